package actor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Context is the runtime object holding an actor's state machine,
// mailbox, children, and watchers.
type Context struct {
	ref    ActorRef
	system *System
	parent ActorRef // zero ref for the user-guardian itself

	mailbox    *Mailbox
	dispatcher Dispatcher

	mu              sync.Mutex
	state           State
	initial         Factory
	behavior        Behavior
	pendingDeferred Factory // a Deferred directive awaiting resolution at next entry

	children        map[ActorId]ActorRef
	watching        map[ActorId]ActorRef
	watchers        map[ActorId]ActorRef
	pendingChildren map[ActorId]ActorRef

	preStopDone  bool
	postStopSent bool
	stopping     bool

	supervision     SupervisionConfig
	restartCounters map[restartKey]*restartCounter

	log *zap.Logger

	lastEnvelope Envelope // set while a user message is in flight, for Self/Sender/Message
}

func newContext(sys *System, id ActorId, parent ActorRef, initial Factory, dk DispatcherKind, throughput int, sup SupervisionConfig) *Context {
	ctx := &Context{
		ref:             ActorRef{id: id, system: sys},
		system:          sys,
		parent:          parent,
		initial:         initial,
		state:           StateCreated,
		children:        make(map[ActorId]ActorRef),
		watching:        make(map[ActorId]ActorRef),
		watchers:        make(map[ActorId]ActorRef),
		pendingChildren: make(map[ActorId]ActorRef),
		supervision:     sup,
		restartCounters: make(map[restartKey]*restartCounter),
		log:             sys.log.With(zap.Int32("actor_id", int32(id))),
	}
	var dispatcher Dispatcher
	switch dk {
	case KindPinned:
		dispatcher = NewPinnedDispatcher()
	case KindConcurrent:
		dispatcher = sys.sharedConcurrentDispatcher()
	default:
		dispatcher = sys.sharedParallelDispatcher()
	}
	ctx.dispatcher = dispatcher
	ctx.mailbox = newMailbox(ctx, dispatcher, throughput)
	return ctx
}

// Self returns the ref of the actor this context belongs to.
func (c *Context) Self() ActorRef { return c.ref }

// Parent returns the ref of the spawning actor, or the zero ref for the
// user-guardian.
func (c *Context) Parent() ActorRef { return c.parent }

// System returns the owning runtime.
func (c *Context) System() *System { return c.system }

// Message returns the message of the envelope currently being handled.
func (c *Context) Message() any { return c.lastEnvelope.Message }

// Sender returns the sender of the envelope currently being handled.
func (c *Context) Sender() ActorRef { return c.lastEnvelope.Sender }

// State returns a point-in-time snapshot of the lifecycle state.
func (c *Context) State() State { return c.stateSnapshot() }

func (c *Context) stateSnapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Children returns the current set of child refs.
func (c *Context) Children() []ActorRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ActorRef, 0, len(c.children))
	for _, r := range c.children {
		out = append(out, r)
	}
	return out
}

// Tell sends message to target as if this actor were the sender.
func (c *Context) Tell(target ActorRef, message any) {
	target.TellFrom(c.ref, message)
}

// Spawn creates a child of this actor, wiring the watch relationship
// required by the "children ⊆ watching" invariant before the child's
// first message is processed.
func (c *Context) Spawn(initial Factory, opts ...SpawnOption) ActorRef {
	return c.system.spawn(c.ref, initial, opts...)
}

// Watch registers this actor to receive Terminated(who) once who
// reaches STOPPED. Idempotent.
func (c *Context) Watch(who ActorRef) {
	who.SendSystem(msgWatch{Watcher: c.ref})
}

// Unwatch undoes a prior Watch. Idempotent.
func (c *Context) Unwatch(who ActorRef) {
	who.SendSystem(msgUnwatch{Watcher: c.ref})
}

// Stop requests this actor gracefully stop.
func (c *Context) Stop() {
	c.ref.SendSystem(Stop)
}

// StopChild requests a specific child gracefully stop.
func (c *Context) StopChild(child ActorRef) {
	child.SendSystem(Stop)
}

// Reply sends value back to the sender of the message currently in
// flight, typically an ask listener; with no sender the value goes to
// dead letters.
func (c *Context) Reply(value any) {
	sender := c.Sender()
	if sender.IsZero() {
		c.system.deadLetter(sender, value, "no sender to reply to")
		return
	}
	sender.Tell(value)
}

// SetSupervision replaces the SupervisionConfig this actor uses to
// decide on its children's failures.
func (c *Context) SetSupervision(cfg SupervisionConfig) {
	c.mu.Lock()
	c.supervision = cfg
	c.mu.Unlock()
}

// ScheduleOnce is a convenience over the system-wide scheduler extension
// for a one-shot delayed self-message.
func (c *Context) ScheduleOnce(delay time.Duration, message any) func() bool {
	return c.system.ScheduleMessage(delay, c.ref, message)
}
