// Package streams implements a demand-driven backpressure protocol:
// every stage is an actor, and Request/OnNext conservation is enforced
// purely by each stage's own bookkeeping rather than by a shared
// scheduler.
package streams

import "github.com/lguibr/bollywood/actor"

// Subscribe asks the recipient (upstream) to accept the sender as its
// downstream. A linear stage that already has a downstream silently
// ignores a second Subscribe.
type Subscribe struct{}

// OnSubscribe confirms a Subscribe, handing the new downstream the ref
// it should address Request/Cancel to.
type OnSubscribe struct{ Upstream actor.ActorRef }

// Request asks upstream for up to N more elements. Additive and
// saturating at math.MaxUint64; N == 0 is ignored.
type Request struct{ N uint64 }

// OnNext delivers one element; only ever sent while the recipient's
// outstanding demand is > 0.
type OnNext struct{ Elem any }

// OnComplete is the successful terminal signal.
type OnComplete struct{}

// OnError is the failing terminal signal.
type OnError struct{ Err error }

// Cancel is downstream's terminal signal to upstream.
type Cancel struct{}

// Produce is ManualSource's intake message.
type Produce struct{ Elem any }

// SubscriptionRequest and SubscriptionCancel are BroadcastHub's
// per-subscriber counterparts to Request/Cancel: a hub has many
// downstreams, so it needs to know which one a demand change or
// cancellation came from. Since each subscriber is itself an actor,
// ctx.Sender() already carries that identity; these types exist so a
// hub subscriber can tell a plain Request meant for a linear stage
// apart from one addressed to a hub.
type SubscriptionRequest struct{ N uint64 }

// SubscriptionCancel cancels one subscriber's feed from a BroadcastHub
// without affecting any other subscriber.
type SubscriptionCancel struct{}

const maxDemand = ^uint64(0)

// addDemand is the additive, saturating accumulation Request(n)
// applies to outstanding demand.
func addDemand(current, n uint64) uint64 {
	if n == 0 {
		return current
	}
	sum := current + n
	if sum < current {
		return maxDemand
	}
	return sum
}
