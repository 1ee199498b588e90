package streams

import "github.com/lguibr/bollywood/actor"

// subscribeUpstream is the PreStart action every flow and sink shares:
// address Subscribe to its fixed upstream ref as the first thing it
// does once running. Flows and sinks compare against the canonical
// actor.PreStart singleton by equality, since the concrete
// system-message types are unexported.
func subscribeUpstream(ctx *actor.Context, upstream actor.ActorRef) {
	upstream.TellFrom(ctx.Self(), Subscribe{})
}

// NewMapFlow transforms each element with f, 1:1 with upstream OnNext.
func NewMapFlow(upstream actor.ActorRef, f func(any) any) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		var downstream actor.ActorRef
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case Subscribe:
				if downstream.IsZero() {
					downstream = ctx.Sender()
					downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				}
			case Request:
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case OnNext:
				if !terminal {
					downstream.Tell(OnNext{Elem: f(m.Elem)})
				}
			case OnComplete:
				terminal = true
				downstream.Tell(OnComplete{})
				return actor.Stopped()
			case OnError:
				terminal = true
				downstream.Tell(m)
				return actor.Stopped()
			case Cancel:
				terminal = true
				upstream.Tell(Cancel{})
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewFilterFlow forwards only elements pred accepts; a rejected element
// is dropped and immediately replaced by requesting one more upstream,
// so downstream's outstanding demand is never silently left unfilled.
func NewFilterFlow(upstream actor.ActorRef, pred func(any) bool) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		var downstream actor.ActorRef
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case Subscribe:
				if downstream.IsZero() {
					downstream = ctx.Sender()
					downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				}
			case Request:
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case OnNext:
				if terminal {
					return actor.Same()
				}
				if pred(m.Elem) {
					downstream.Tell(OnNext{Elem: m.Elem})
				} else {
					upstream.Tell(Request{N: 1})
				}
			case OnComplete:
				terminal = true
				downstream.Tell(OnComplete{})
				return actor.Stopped()
			case OnError:
				terminal = true
				downstream.Tell(m)
				return actor.Stopped()
			case Cancel:
				terminal = true
				upstream.Tell(Cancel{})
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewTakeFlow forwards at most n elements, then cancels upstream and
// completes downstream on its own.
func NewTakeFlow(upstream actor.ActorRef, n uint64) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		var downstream actor.ActorRef
		remaining := n
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case Subscribe:
				if downstream.IsZero() {
					downstream = ctx.Sender()
					downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				}
			case Request:
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case OnNext:
				if terminal || remaining == 0 {
					return actor.Same()
				}
				downstream.Tell(OnNext{Elem: m.Elem})
				remaining--
				if remaining == 0 {
					terminal = true
					upstream.Tell(Cancel{})
					downstream.Tell(OnComplete{})
					return actor.Stopped()
				}
			case OnComplete:
				terminal = true
				downstream.Tell(OnComplete{})
				return actor.Stopped()
			case OnError:
				terminal = true
				downstream.Tell(m)
				return actor.Stopped()
			case Cancel:
				terminal = true
				upstream.Tell(Cancel{})
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewDropFlow discards the first n elements, requesting a replacement
// upstream for each one dropped so downstream demand is still met.
func NewDropFlow(upstream actor.ActorRef, n uint64) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		var downstream actor.ActorRef
		remaining := n
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case Subscribe:
				if downstream.IsZero() {
					downstream = ctx.Sender()
					downstream.Tell(OnSubscribe{Upstream: ctx.Self()})
				}
			case Request:
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case OnNext:
				if terminal {
					return actor.Same()
				}
				if remaining > 0 {
					remaining--
					upstream.Tell(Request{N: 1})
					return actor.Same()
				}
				downstream.Tell(OnNext{Elem: m.Elem})
			case OnComplete:
				terminal = true
				downstream.Tell(OnComplete{})
				return actor.Stopped()
			case OnError:
				terminal = true
				downstream.Tell(m)
				return actor.Stopped()
			case Cancel:
				terminal = true
				upstream.Tell(Cancel{})
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewTapFlow runs a side effect on each element and forwards it
// unchanged.
func NewTapFlow(upstream actor.ActorRef, effect func(any)) actor.Factory {
	return NewMapFlow(upstream, func(v any) any {
		effect(v)
		return v
	})
}
