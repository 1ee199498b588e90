package actor

// systemMessage is the closed taxonomy of lifecycle and supervision
// signals. It is unexported: callers never construct these by hand other
// than through the Watch/Unwatch/Stop helpers, keeping the set closed.
type systemMessage interface {
	isSystemMessage()
}

type (
	// PreStart fires once, before the first user message, after the
	// behavior has been incarnated.
	msgPreStart struct{}
	// PostStart fires once the actor has transitioned to RUNNING.
	msgPostStart struct{}
	// PreStop fires once graceful stop has been requested, before any
	// child is known to have terminated.
	msgPreStop struct{}
	// PostStop fires once every child has terminated and PreStop has
	// run; it is the last signal the behavior ever observes.
	msgPostStop struct{}
	// Stop requests a graceful stop.
	msgStop struct{}
)

// msgRestart asks the target to restart (purge user mailbox, re-run
// PreStart/PostStart) after a supervision decision.
type msgRestart struct{ Cause error }

// msgPreRestart fires on a restarting actor before state is torn down.
type msgPreRestart struct{ Cause error }

// msgPostRestart is the post-restart counterpart of PreRestart. It is
// part of the taxonomy only: onRestart never sends it.
type msgPostRestart struct{ Cause error }

// msgWatch registers Watcher to receive Terminated when the target stops.
type msgWatch struct{ Watcher ActorRef }

// msgUnwatch undoes a prior Watch.
type msgUnwatch struct{ Watcher ActorRef }

// msgTerminated notifies a watcher that Who has reached STOPPED.
type msgTerminated struct {
	Who   ActorRef
	Cause error
}

// msgFailed notifies watchers (in particular: the parent) that Who
// raised inside a message handler.
type msgFailed struct {
	Who   ActorRef
	Cause error
}

func (msgPreStart) isSystemMessage()    {}
func (msgPostStart) isSystemMessage()   {}
func (msgPreStop) isSystemMessage()     {}
func (msgPostStop) isSystemMessage()    {}
func (msgStop) isSystemMessage()        {}
func (msgRestart) isSystemMessage()     {}
func (msgPreRestart) isSystemMessage()  {}
func (msgPostRestart) isSystemMessage() {}
func (msgWatch) isSystemMessage()       {}
func (msgUnwatch) isSystemMessage()     {}
func (msgTerminated) isSystemMessage()  {}
func (msgFailed) isSystemMessage()      {}

// Canonical singletons for the five parameterless lifecycle signals.
var (
	PreStart  systemMessage = msgPreStart{}
	PostStart systemMessage = msgPostStart{}
	PreStop   systemMessage = msgPreStop{}
	PostStop  systemMessage = msgPostStop{}
	Stop      systemMessage = msgStop{}
)

// Signal is the user-visible projection of a system message, delivered to
// a Behavior's signal handling path. It is the
// same closed set, re-exported so behaviors outside the package can
// switch on it without reaching into package-private types.
type Signal = systemMessage

// Terminated, Failed, Restart, and PreRestart are exported aliases so
// watchers/behaviors can type-switch on them from outside the package.
type (
	Terminated = msgTerminated
	Failed     = msgFailed
	Restart    = msgRestart
	PreRestart = msgPreRestart
)
