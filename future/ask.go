package future

import (
	"time"

	"github.com/google/uuid"

	"github.com/lguibr/bollywood/actor"
)

// Response is the generic reply envelope an ask listener accepts. A
// responder builds one and sends it back to the ref Ask handed it, for
// example via ctx.Reply. ctx.Reply does not check that the sender is an
// ask listener: it sends to any sender and records a dead letter when
// there is none.
type Response[T any] struct {
	Token  string
	Value  T
	Err    error
	Cancel bool
}

type askTimeout struct{}

// Ask spawns a short-lived listener actor, sends target the message
// build constructs (tagged with the listener's ref as sender and a
// correlation token), and returns a Future that completes from
// whichever of three races happens first: a matching Response, the
// target reaching Terminated, or the timeout.
func Ask[R any](sys *actor.System, target actor.ActorRef, timeout time.Duration, build func(replyTo actor.ActorRef, token string) any) Future[R] {
	token := uuid.NewString()
	promise := NewPromise[R]()

	listener := sys.Spawn(func(ctx *actor.Context) actor.Behavior {
		ctx.Watch(target)
		return func(ctx *actor.Context, message any) actor.Directive {
			switch m := message.(type) {
			case Response[R]:
				if m.Token != token {
					return actor.Same()
				}
				switch {
				case m.Cancel:
					promise.TryCancel()
				case m.Err != nil:
					promise.TryFailure(m.Err)
				default:
					promise.TrySuccess(m.Value)
				}
				return actor.Stopped()
			case actor.Terminated:
				if m.Who.Equal(target) {
					promise.TryFailure(ErrTargetTerminated)
					return actor.Stopped()
				}
				return actor.Same()
			case askTimeout:
				promise.TryFailure(ErrFutureTimeout)
				return actor.Stopped()
			default:
				return actor.Same()
			}
		}
	})

	if timeout > 0 {
		cancelTimer := sys.ScheduleMessage(timeout, listener, askTimeout{})
		promise.Future().OnComplete(func(Future[R]) { cancelTimer() })
	}

	request := build(listener, token)
	target.TellFrom(listener, request)

	return promise.Future()
}
