package streams

import (
	"github.com/lguibr/bollywood/actor"
	"github.com/lguibr/bollywood/future"
)

// NewCollectSink subscribes to upstream and forwards each element to
// out. It only ever pulls in response to a Request it receives itself
// (normally build_pipeline's one-time initial priming Request);
// thereafter it self-replenishes one slot of demand per element
// consumed, so the pipeline keeps flowing without an external driver
// after that single kick.
func NewCollectSink(upstream actor.ActorRef, out chan<- any) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case OnNext:
				if terminal {
					return actor.Same()
				}
				out <- m.Elem
				upstream.Tell(Request{N: 1})
			case OnComplete:
				terminal = true
				close(out)
				return actor.Stopped()
			case OnError:
				terminal = true
				close(out)
				return actor.Stopped()
			case Request:
				// A sink has no downstream of its own; Request reaching
				// it directly (rather than via OnSubscribe priming) is
				// a caller manually pulling; honor it the same way.
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case Cancel:
				terminal = true
				upstream.Tell(Cancel{})
				close(out)
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}

// NewFoldSink accumulates every element with f starting from acc, and
// completes promise with the final accumulator once upstream reaches
// OnComplete.
func NewFoldSink(upstream actor.ActorRef, acc any, f func(acc, elem any) any, promise *future.Promise[any]) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		terminal := false

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case OnNext:
				if terminal {
					return actor.Same()
				}
				acc = f(acc, m.Elem)
				upstream.Tell(Request{N: 1})
			case Request:
				if !terminal && m.N > 0 {
					upstream.Tell(m)
				}
			case OnComplete:
				terminal = true
				promise.TrySuccess(acc)
				return actor.Stopped()
			case OnError:
				terminal = true
				promise.TryFailure(m.Err)
				return actor.Stopped()
			case Cancel:
				terminal = true
				promise.TryCancel()
				upstream.Tell(Cancel{})
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}
