package actor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/lguibr/bollywood/actor"
)

// watcherOf spawns an actor whose only job is to watch target and
// forward every Terminated it observes onto out, stamped with arrival
// time.
func watcherOf(sys *actor.System, target actor.ActorRef, out chan<- time.Time) actor.ActorRef {
	return sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		ctx.Watch(target)
		return func(ctx *actor.Context, message any) actor.Directive {
			if m, ok := message.(actor.Terminated); ok && m.Who.Equal(target) {
				out <- time.Now()
			}
			return actor.Same()
		}
	})
}

func TestStopWaitsForChildrenToTerminate(t *testing.T) {
	sys := newTestSystem(t)

	childStops := make(chan time.Time, 3)
	parentPostStop := make(chan time.Time, 1)

	childFactory := func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStop {
				time.Sleep(50 * time.Millisecond)
				childStops <- time.Now()
			}
			return actor.Same()
		}
	}

	parent := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		for i := 0; i < 3; i++ {
			ctx.Spawn(childFactory)
		}
		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PostStop {
				parentPostStop <- time.Now()
			}
			return actor.Same()
		}
	})

	terminated := make(chan time.Time, 1)
	watcherOf(sys, parent, terminated)
	time.Sleep(20 * time.Millisecond) // let the watch register

	stopRequested := time.Now()
	sys.Stop(parent)

	var parentDone time.Time
	select {
	case parentDone = <-terminated:
	case <-time.After(2 * time.Second):
		t.Fatal("parent never reported Terminated")
	}

	assert.GreaterOrEqual(t, parentDone.Sub(stopRequested), 50*time.Millisecond,
		"parent terminated before its children finished PreStop")

	require.Len(t, childStops, 3, "every child must have run PreStop")
	postStop := <-parentPostStop
	for i := 0; i < 3; i++ {
		childDone := <-childStops
		assert.True(t, !postStop.Before(childDone),
			"parent PostStop ran before a child finished stopping")
	}
}

func TestExactlyOneTerminatedPerWatcherEvenWithDuplicateWatch(t *testing.T) {
	sys := newTestSystem(t)

	target := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
	})

	var notifications atomic.Int64
	sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		ctx.Watch(target)
		ctx.Watch(target)
		return func(ctx *actor.Context, message any) actor.Directive {
			if m, ok := message.(actor.Terminated); ok && m.Who.Equal(target) {
				notifications.Inc()
			}
			return actor.Same()
		}
	})

	time.Sleep(20 * time.Millisecond)
	sys.Stop(target)

	require.Eventually(t, func() bool { return notifications.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), notifications.Load(), "duplicate Watch produced a second Terminated")
}

func TestDuplicateStopRunsLifecycleOnce(t *testing.T) {
	sys := newTestSystem(t)

	var preStops, postStops atomic.Int64
	ref := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			switch message {
			case actor.PreStop:
				preStops.Inc()
			case actor.PostStop:
				postStops.Inc()
			}
			return actor.Same()
		}
	})

	sys.Stop(ref)
	sys.Stop(ref)
	sys.Stop(ref)

	require.Eventually(t, func() bool { return postStops.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), preStops.Load())
	assert.Equal(t, int64(1), postStops.Load())
}

func TestBecomeSwitchesHandlerForNextMessage(t *testing.T) {
	sys := newTestSystem(t)

	out := make(chan string, 4)
	second := func(ctx *actor.Context, message any) actor.Directive {
		if s, ok := message.(string); ok {
			out <- "second:" + s
		}
		return actor.Same()
	}
	ref := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if s, ok := message.(string); ok {
				out <- "first:" + s
				return actor.Become(second)
			}
			return actor.Same()
		}
	})

	ref.Tell("a")
	ref.Tell("b")

	assert.Equal(t, "first:a", <-out)
	assert.Equal(t, "second:b", <-out)
}

func TestStoppedDirectiveStopsTheActor(t *testing.T) {
	sys := newTestSystem(t)

	ref := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if message == "die" {
				return actor.Stopped()
			}
			return actor.Same()
		}
	})

	terminated := make(chan time.Time, 1)
	watcherOf(sys, ref, terminated)
	time.Sleep(20 * time.Millisecond)

	ref.Tell("die")
	select {
	case <-terminated:
	case <-time.After(time.Second):
		t.Fatal("actor did not stop after returning Stopped")
	}
}

func TestDeferredResolvesBeforeNextMessage(t *testing.T) {
	sys := newTestSystem(t)

	out := make(chan string, 4)
	ref := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if message == "switch" {
				return actor.Deferred(func(ctx *actor.Context) actor.Behavior {
					// Factories may spawn children.
					ctx.Spawn(func(ctx *actor.Context) actor.Behavior {
						return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
					})
					return func(ctx *actor.Context, message any) actor.Directive {
						if s, ok := message.(string); ok {
							out <- "deferred:" + s
						}
						return actor.Same()
					}
				})
			}
			return actor.Same()
		}
	})

	ref.Tell("switch")
	ref.Tell("x")

	assert.Equal(t, "deferred:x", <-out)
}

func TestUnwatchSuppressesTerminated(t *testing.T) {
	sys := newTestSystem(t)

	target := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
	})

	var notifications atomic.Int64
	sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		ctx.Watch(target)
		ctx.Unwatch(target)
		return func(ctx *actor.Context, message any) actor.Directive {
			if m, ok := message.(actor.Terminated); ok && m.Who.Equal(target) {
				notifications.Inc()
			}
			return actor.Same()
		}
	})

	time.Sleep(20 * time.Millisecond)
	sys.Stop(target)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, notifications.Load(), "Unwatch must suppress the Terminated notification")
}
