package actor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lguibr/bollywood/actor"
)

func newTestSystem(t *testing.T) *actor.System {
	t.Helper()
	sys := actor.NewSystem(actor.WithLogger(zap.NewNop()))
	t.Cleanup(func() { sys.Shutdown(2 * time.Second) })
	return sys
}

func TestMessagesArriveInSendOrder(t *testing.T) {
	sys := newTestSystem(t)

	var mu sync.Mutex
	var got []int
	appender := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if v, ok := message.(int); ok {
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			}
			return actor.Same()
		}
	})

	for _, v := range []int{1, 2, 3, 4, 5} {
		appender.Tell(v)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 5
	}, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
}

type seqMsg struct {
	from int
	seq  int
}

func TestPerSenderPairOrderingUnderConcurrency(t *testing.T) {
	sys := newTestSystem(t)

	const senders = 4
	const perSender = 100

	var received atomic.Int64
	var violations atomic.Int64
	last := make([]int, senders)
	receiver := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if m, ok := message.(seqMsg); ok {
				if m.seq != last[m.from]+1 {
					violations.Inc()
				}
				last[m.from] = m.seq
				received.Inc()
			}
			return actor.Same()
		}
	})

	for i := 0; i < senders; i++ {
		from := i
		sys.Spawn(func(ctx *actor.Context) actor.Behavior {
			for seq := 1; seq <= perSender; seq++ {
				ctx.Tell(receiver, seqMsg{from: from, seq: seq})
			}
			return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
		})
	}

	require.Eventually(t, func() bool {
		return received.Load() == senders*perSender
	}, 5*time.Second, time.Millisecond)
	assert.Zero(t, violations.Load(), "each sender's messages must arrive in send order")
}

func TestAtMostOneWorkerDrainsAnActor(t *testing.T) {
	sys := newTestSystem(t)

	var inside atomic.Bool
	var overlaps atomic.Int64
	var processed atomic.Int64
	busy := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive {
			if !inside.CompareAndSwap(false, true) {
				overlaps.Inc()
			}
			time.Sleep(100 * time.Microsecond)
			inside.Store(false)
			if _, ok := message.(int); ok {
				processed.Inc()
			}
			return actor.Same()
		}
	})

	const goroutines = 8
	const perGoroutine = 50
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				busy.Tell(i)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return processed.Load() == goroutines*perGoroutine
	}, 5*time.Second, time.Millisecond)
	assert.Zero(t, overlaps.Load(), "two workers drained the same mailbox at once")
}

func TestTellToStoppedActorIsDeadLettered(t *testing.T) {
	sys := newTestSystem(t)

	short := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
	})
	sys.Stop(short)

	require.Eventually(t, func() bool {
		short.Tell("late")
		select {
		case dl := <-sys.DeadLetters():
			return dl.Target.Equal(short)
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestShutdownDrainsEveryActor(t *testing.T) {
	sys := actor.NewSystem(actor.WithLogger(zap.NewNop()))

	refs := make([]actor.ActorRef, 0, 5)
	for i := 0; i < 5; i++ {
		refs = append(refs, sys.Spawn(func(ctx *actor.Context) actor.Behavior {
			return func(ctx *actor.Context, message any) actor.Directive { return actor.Same() }
		}))
	}

	sys.Shutdown(2 * time.Second)

	refs[0].Tell("after shutdown")
	select {
	case dl := <-sys.DeadLetters():
		assert.Equal(t, "after shutdown", dl.Message)
	case <-time.After(time.Second):
		t.Fatal("send after shutdown was not dead-lettered")
	}
}

func TestDispatcherKindsAllDeliver(t *testing.T) {
	sys := newTestSystem(t)

	for _, kind := range []actor.DispatcherKind{actor.KindParallel, actor.KindPinned, actor.KindConcurrent} {
		var count atomic.Int64
		ref := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
			return func(ctx *actor.Context, message any) actor.Directive {
				if _, ok := message.(int); ok {
					count.Inc()
				}
				return actor.Same()
			}
		}, actor.WithDispatcher(kind))

		for i := 0; i < 20; i++ {
			ref.Tell(i)
		}
		require.Eventually(t, func() bool { return count.Load() == 20 }, time.Second, time.Millisecond)
	}
}
