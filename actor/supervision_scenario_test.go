package actor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/lguibr/bollywood/actor"
)

type crash struct{}

func crashingChild(starts *atomic.Int64, startTimes chan<- time.Time) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		starts.Inc()
		select {
		case startTimes <- time.Now():
		default:
		}
		return func(ctx *actor.Context, message any) actor.Directive {
			if _, ok := message.(crash); ok {
				panic("synthetic child failure")
			}
			return actor.Same()
		}
	}
}

func TestRestartWithBackoffThenEscalateOnExhaustion(t *testing.T) {
	sys := newTestSystem(t)

	var starts atomic.Int64
	startTimes := make(chan time.Time, 8)
	childCh := make(chan actor.ActorRef, 1)

	parent := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		childCh <- ctx.Spawn(crashingChild(&starts, startTimes))
		return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
	}, actor.WithSupervision(actor.SupervisionConfig{
		Strategy:      actor.StrategyRestart,
		Scope:         actor.OneForOne,
		MaxRestarts:   2,
		Within:        time.Second,
		BackoffMin:    20 * time.Millisecond,
		BackoffMax:    200 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        0,
	}))

	var child actor.ActorRef
	select {
	case child = <-childCh:
	case <-time.After(time.Second):
		t.Fatal("parent never spawned its child")
	}

	escalated := make(chan error, 1)
	sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		ctx.Watch(parent)
		return func(ctx *actor.Context, message any) actor.Directive {
			if m, ok := message.(actor.Failed); ok && m.Who.Equal(child) {
				select {
				case escalated <- m.Cause:
				default:
				}
			}
			return actor.Same()
		}
	})

	require.Eventually(t, func() bool { return starts.Load() == 1 }, time.Second, time.Millisecond)
	<-startTimes

	// First failure: one restart after the minimum backoff.
	child.Tell(crash{})
	failedAt := time.Now()
	require.Eventually(t, func() bool { return starts.Load() == 2 }, time.Second, time.Millisecond)
	restartedAt := <-startTimes
	assert.GreaterOrEqual(t, restartedAt.Sub(failedAt), 15*time.Millisecond,
		"restart fired before the configured backoff")

	// Second failure: restart again, with a doubled delay.
	child.Tell(crash{})
	require.Eventually(t, func() bool { return starts.Load() == 3 }, time.Second, time.Millisecond)
	<-startTimes

	// Third failure exhausts the counter: the child is stopped, the
	// failure escalates to the parent's watchers, no further restart.
	child.Tell(crash{})
	select {
	case cause := <-escalated:
		assert.Error(t, cause)
	case <-time.After(time.Second):
		t.Fatal("exhausted restart counter did not escalate Failed to the parent's watchers")
	}

	require.Eventually(t, func() bool {
		child.Tell("probe")
		select {
		case dl := <-sys.DeadLetters():
			return dl.Target.Equal(child)
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3), starts.Load(), "no restart may follow counter exhaustion")
}

func TestAllForOneStopsEverySibling(t *testing.T) {
	sys := newTestSystem(t)

	var starts atomic.Int64
	discard := make(chan time.Time, 8)
	refs := make(chan actor.ActorRef, 2)

	sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		refs <- ctx.Spawn(crashingChild(&starts, discard))
		refs <- ctx.Spawn(crashingChild(&starts, discard))
		return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
	}, actor.WithSupervision(actor.SupervisionConfig{
		Strategy: actor.StrategyStop,
		Scope:    actor.AllForOne,
	}))

	a := <-refs
	b := <-refs
	require.Eventually(t, func() bool { return starts.Load() == 2 }, time.Second, time.Millisecond)

	a.Tell(crash{})

	for _, ref := range []actor.ActorRef{a, b} {
		ref := ref
		require.Eventually(t, func() bool {
			ref.Tell("probe")
			select {
			case dl := <-sys.DeadLetters():
				return dl.Target.Equal(ref)
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond, "sibling %v survived an all-for-one stop", ref)
	}
}
