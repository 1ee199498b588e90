package actor

import "fmt"

// ActorRef is an opaque, shareable handle addressing an actor by id.
// Equality and hashing are by id; a ref carries no ownership of the
// actor it addresses. The zero ActorRef is the "no sender" / "no parent"
// sentinel; a send through it is dropped without a dead letter.
type ActorRef struct {
	id     ActorId
	system *System
}

// PID is an alias kept for source compatibility with the original
// channel-based engine's vocabulary.
type PID = ActorRef

// ID returns the numeric identity of the ref.
func (r ActorRef) ID() ActorId { return r.id }

// System returns the system the ref belongs to, or nil for the zero ref.
func (r ActorRef) System() *System { return r.system }

// IsZero reports whether r is the no-op/unset reference.
func (r ActorRef) IsZero() bool { return r.system == nil && r.id == 0 }

// Equal compares two refs by identity.
func (r ActorRef) Equal(other ActorRef) bool {
	return r.id == other.id && r.system == other.system
}

func (r ActorRef) String() string {
	if r.IsZero() {
		return "actor://nil"
	}
	return fmt.Sprintf("actor://%d", r.id)
}

// Tell is a one-way send; the sender is recorded as the zero ref (as if
// sent from outside any actor).
func (r ActorRef) Tell(message any) {
	r.TellFrom(ActorRef{}, message)
}

// TellFrom sends message with an explicit sender, used for ask/reply
// chains and actor-to-actor sends where ctx.Self() is the sender.
func (r ActorRef) TellFrom(sender ActorRef, message any) {
	if r.system == nil {
		return
	}
	r.system.deliverUser(r, Envelope{Message: message, Sender: sender})
}

// SendSystem enqueues a system (lifecycle/supervision) signal. User code
// normally reaches this only indirectly, through Stop/Watch/Unwatch
// helpers on Context or System.
func (r ActorRef) SendSystem(signal systemMessage) {
	if r.system == nil {
		return
	}
	r.system.deliverSystem(r, Envelope{Message: signal, Sender: ActorRef{}})
}

// Typed wraps an ActorRef with a compile-time message type, for call
// sites that want T-checked Tell without losing the untyped handle the
// runtime needs internally for supervision bookkeeping.
type Typed[T any] struct {
	ActorRef
}

// NewTyped narrows an ActorRef to a Typed[T] handle.
func NewTyped[T any](ref ActorRef) Typed[T] { return Typed[T]{ActorRef: ref} }

// Tell sends a T-typed message.
func (t Typed[T]) Tell(message T) { t.ActorRef.Tell(message) }

// TellFrom sends a T-typed message with an explicit sender.
func (t Typed[T]) TellFrom(sender ActorRef, message T) { t.ActorRef.TellFrom(sender, message) }
