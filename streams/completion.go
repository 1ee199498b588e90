package streams

import (
	"github.com/lguibr/bollywood/actor"
	"github.com/lguibr/bollywood/future"
)

// NewCompletionFlow is a transparent pass-through that completes
// promise the moment the stream reaches a terminal state: Success on
// OnComplete, Failure on OnError, Cancelled on a downstream Cancel.
func NewCompletionFlow(upstream actor.ActorRef, promise *future.Promise[any]) actor.Factory {
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
					downstream.Tell(m)
				}
			case OnComplete:
				terminal = true
				promise.TrySuccess(nil)
				downstream.Tell(OnComplete{})
				return actor.Stopped()
			case OnError:
				terminal = true
				promise.TryFailure(m.Err)
				downstream.Tell(m)
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
