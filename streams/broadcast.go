package streams

import "github.com/lguibr/bollywood/actor"

// NewBroadcastHub fans one upstream subscription out to many
// subscribers, each tracked by its own outstanding demand. Upstream
// demand is kept resynced to the maximum outstanding subscriber demand
// minus what is already in flight, so a single slow subscriber never
// starves the others and a single fast one never stalls waiting for
// the slowest.
func NewBroadcastHub(upstream actor.ActorRef) actor.Factory {
	return func(ctx *actor.Context) actor.Behavior {
		subs := make(map[actor.ActorRef]uint64)
		var upstreamRequested uint64 // outstanding demand we've granted upstream, not yet consumed
		terminal := false

		maxSubDemand := func() uint64 {
			var max uint64
			for _, d := range subs {
				if d > max {
					max = d
				}
			}
			return max
		}

		resyncUpstream := func() {
			target := maxSubDemand()
			if target > upstreamRequested {
				upstream.Tell(Request{N: target - upstreamRequested})
				upstreamRequested = target
			}
		}

		return func(ctx *actor.Context, message any) actor.Directive {
			if message == actor.PreStart {
				subscribeUpstream(ctx, upstream)
				return actor.Same()
			}
			switch m := message.(type) {
			case Subscribe:
				sub := ctx.Sender()
				if _, exists := subs[sub]; !exists {
					subs[sub] = 0
				}
				sub.Tell(OnSubscribe{Upstream: ctx.Self()})
			case SubscriptionRequest:
				sub := ctx.Sender()
				if _, ok := subs[sub]; !ok || terminal || m.N == 0 {
					return actor.Same()
				}
				subs[sub] = addDemand(subs[sub], m.N)
				resyncUpstream()
			case SubscriptionCancel:
				delete(subs, ctx.Sender())
				if len(subs) == 0 {
					terminal = true
					upstream.Tell(Cancel{})
					return actor.Stopped()
				}
			case OnNext:
				if terminal {
					return actor.Same()
				}
				if upstreamRequested > 0 {
					upstreamRequested--
				}
				for sub, d := range subs {
					if d > 0 {
						sub.Tell(OnNext{Elem: m.Elem})
						subs[sub] = d - 1
					}
				}
			case OnComplete:
				terminal = true
				for sub := range subs {
					sub.Tell(OnComplete{})
				}
				return actor.Stopped()
			case OnError:
				terminal = true
				for sub := range subs {
					sub.Tell(m)
				}
				return actor.Stopped()
			}
			return actor.Same()
		}
	}
}
