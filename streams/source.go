package streams

import (
	"time"

	"github.com/lguibr/bollywood/actor"
	"github.com/lguibr/bollywood/queue"
)

// NewManualSource builds a Source actor fed externally via Produce
// messages. Elements arriving with no demand, or before any downstream
// has subscribed, are buffered.
func NewManualSource() actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		buf := queue.New[any](8)
		var downstream actor.ActorRef
		var demand uint64
		terminal := false

		emit := func() {
			for !terminal && !downstream.IsZero() && demand > 0 {
				v, ok := buf.Pop()
				if !ok {
					break
				}
				downstream.Tell(OnNext{Elem: v})
				demand--
			}
		}

		return func(ctx *actor.Context, message any) actor.Directive {
			switch m := message.(type) {
			case Subscribe:
				if !downstream.IsZero() {
					return actor.Same()
				}
				downstream = ctx.Sender()
				downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				emit()
			case Request:
				if terminal {
					return actor.Same()
				}
				demand = addDemand(demand, m.N)
				emit()
			case Produce:
				if terminal {
					return actor.Same()
				}
				buf.Push(m.Elem)
				emit()
			case OnComplete:
				terminal = true
				if !downstream.IsZero() {
					downstream.Tell(OnComplete{})
				}
				return actor.Stopped()
			case Cancel:
				terminal = true
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewArraySource emits every element of items in order, then
// OnComplete, pulling only as fast as downstream demand allows.
func NewArraySource(items []any) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		idx := 0
		var downstream actor.ActorRef
		var demand uint64
		terminal := false

		emit := func() {
			for !terminal && !downstream.IsZero() && demand > 0 {
				if idx >= len(items) {
					terminal = true
					downstream.Tell(OnComplete{})
					return
				}
				downstream.Tell(OnNext{Elem: items[idx]})
				idx++
				demand--
			}
		}

		return func(ctx *actor.Context, message any) actor.Directive {
			switch m := message.(type) {
			case Subscribe:
				if !downstream.IsZero() {
					return actor.Same()
				}
				downstream = ctx.Sender()
				downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				emit()
			case Request:
				if terminal {
					return actor.Same()
				}
				demand = addDemand(demand, m.N)
				emit()
				if terminal {
					return actor.Stopped()
				}
			case Cancel:
				terminal = true
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewSingleSource emits exactly one element then completes.
func NewSingleSource(value any) actor.Factory {
	return NewArraySource([]any{value})
}

// NewTickSource emits build(seq) once per interval, for as long as
// downstream demand remains positive; it pauses rather than buffering
// when demand drops to zero.
func NewTickSource(interval time.Duration, build func(seq uint64) any) actor.Factory {
	type tick struct{}

	return func(ctx *actor.Context) actor.Behavior {
		var downstream actor.ActorRef
		var demand uint64
		var seq uint64
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			switch m := message.(type) {
			case Subscribe:
				if !downstream.IsZero() {
					return actor.Same()
				}
				downstream = ctx.Sender()
				downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
			case Request:
				if terminal {
					return actor.Same()
				}
				wasIdle := demand == 0
				demand = addDemand(demand, m.N)
				if wasIdle && demand > 0 {
					ctx.ScheduleOnce(interval, tick{})
				}
			case tick:
				if terminal || demand == 0 {
					return actor.Same()
				}
				downstream.Tell(OnNext{Elem: build(seq)})
				seq++
				demand--
				if demand > 0 {
					ctx.ScheduleOnce(interval, tick{})
				}
			case Cancel:
				terminal = true
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}
