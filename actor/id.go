package actor

import "go.uber.org/atomic"

// ActorId is a process-unique, monotonically increasing identifier.
type ActorId int32

type idCounter struct {
	next atomic.Int32
}

func (c *idCounter) nextID() ActorId {
	return ActorId(c.next.Inc())
}
