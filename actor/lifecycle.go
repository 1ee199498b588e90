package actor

import (
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// handleSystemMessage dispatches one system-queue envelope. System
// messages run in every non-terminal state;
// the mailbox only ever calls this while the context is registered.
func (c *Context) handleSystemMessage(env Envelope) {
	c.lastEnvelope = env
	switch msg := env.Message.(type) {
	case msgPreStart:
		c.onPreStart()
	case msgPostStart:
		c.onPostStart()
	case msgStop:
		c.onStop()
	case msgPreStop:
		c.onPreStop()
	case msgPostStop:
		c.onPostStopSelf()
	case msgRestart:
		c.onRestart(msg.Cause)
	case msgWatch:
		c.onWatch(msg.Watcher)
	case msgUnwatch:
		c.onUnwatch(msg.Watcher)
	case msgTerminated:
		c.onChildTerminated(msg)
	case msgFailed:
		c.onChildFailed(msg)
	default:
		c.log.Warn("unknown system message ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// handleUserMessage dispatches one user-queue envelope. Only called by
// the mailbox while RUNNING; a non-RUNNING actor's user queue simply
// backs up until it is again.
func (c *Context) handleUserMessage(env Envelope) {
	c.lastEnvelope = env
	c.invoke(env.Message)
}

// currentBehavior reads the active behavior under the state lock.
func (c *Context) currentBehavior() Behavior {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.behavior
}

func (c *Context) setBehavior(b Behavior) {
	c.mu.Lock()
	c.behavior = b
	c.mu.Unlock()
}

// invokeRaw calls the active behavior with no panic recovery of its
// own; callers decide how a panic during this particular invocation
// should be handled.
func (c *Context) invokeRaw(msg any) Directive {
	b := c.currentBehavior()
	if b == nil {
		return Same()
	}
	return b(c, msg)
}

// applyDirective folds the behavior's return value back into context
// state.
func (c *Context) applyDirective(d Directive) {
	switch v := d.(type) {
	case nil, sameDirective:
		// no-op
	case stoppedDirective:
		c.Stop()
	case becomeDirective:
		c.setBehavior(v.next)
	case deferredDirective:
		c.setBehavior(v.factory(c))
	}
}

// invoke runs the active behavior with the standard panic-to-Failed
// recovery: an unhandled panic notifies watchers with Failed(self,
// cause) and resumes RUNNING immediately (RESUME is the zero-action
// default; an asynchronous parent decision made from onChildFailed can
// still Stop or Restart this actor afterward, since both of those are
// themselves system messages processed regardless of the momentary
// resume).
func (c *Context) invoke(msg any) {
	directive := func() (d Directive) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				err := &PanicError{Value: r, Stack: stack}
				c.log.Error("actor panicked",
					zap.String("message_type", fmt.Sprintf("%T", msg)),
					zap.Error(err),
				)
				c.failDuringRunning(err)
				d = Same()
			}
		}()
		return c.invokeRaw(msg)
	}()
	c.applyDirective(directive)
}

func (c *Context) failDuringRunning(cause error) {
	c.notifyWatchers(msgFailed{Who: c.ref, Cause: cause})
	c.setState(StateFailed)
	c.setState(StateRunning)
}

func (c *Context) failDuringStart(cause error) {
	c.notifyWatchers(msgFailed{Who: c.ref, Cause: cause})
	c.setState(StateFailed)
}

func (c *Context) notifyWatchers(msg systemMessage) {
	c.mu.Lock()
	ws := make([]ActorRef, 0, len(c.watchers))
	for _, w := range c.watchers {
		ws = append(ws, w)
	}
	c.mu.Unlock()
	for _, w := range ws {
		w.SendSystem(msg)
	}
}

func (c *Context) currentSupervision() SupervisionConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.supervision
}

// --- start -----------------------------------------------------------

// start is called exactly once by System.spawn, moving CREATED → STARTING
// and kicking off the PreStart signal.
func (c *Context) start() {
	c.setState(StateStarting)
	c.ref.SendSystem(PreStart)
}

// onPreStart resolves the initial behavior and invokes its PreStart
// handler. A panic resolving the factory or handling the signal fails
// the actor before it ever reaches RUNNING, skipping PostStart.
func (c *Context) onPreStart() {
	failed := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				err := &PanicError{Value: r, Stack: stack}
				c.log.Error("actor panicked during PreStart", zap.Error(err))
				failed = true
				c.failDuringStart(err)
			}
		}()
		b := c.initial(c)
		c.setBehavior(b)
		c.applyDirective(c.invokeRaw(PreStart))
	}()
	if failed {
		return
	}
	c.ref.SendSystem(PostStart)
}

// onPostStart moves STARTING to RUNNING. A Stop processed between
// PreStart and PostStart leaves the actor STOPPING and PostStart unrun.
func (c *Context) onPostStart() {
	c.mu.Lock()
	if c.state != StateStarting {
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.mu.Unlock()
	c.invoke(PostStart)
}

// --- stop --------------------------------------------------------------

func (c *Context) onStop() {
	c.mu.Lock()
	switch c.state {
	case StateStopping, StateStopped, StateTerminated:
		c.mu.Unlock()
		return
	}
	c.state = StateStopping
	c.preStopDone = false
	c.postStopSent = false
	pending := make(map[ActorId]ActorRef, len(c.children))
	for id, ref := range c.children {
		pending[id] = ref
	}
	c.pendingChildren = pending
	c.mu.Unlock()

	for _, child := range pending {
		child.SendSystem(Stop)
	}
	c.ref.SendSystem(PreStop)
}

func (c *Context) onPreStop() {
	c.invoke(PreStop)
	c.mu.Lock()
	c.preStopDone = true
	c.mu.Unlock()
	c.finalizeStopIfReady()
}

// finalizeStopIfReady self-sends PostStop exactly once, the instant
// pre_stop_done holds and every pending child has reported Terminated.
func (c *Context) finalizeStopIfReady() {
	c.mu.Lock()
	ready := c.state == StateStopping && !c.postStopSent && c.preStopDone && len(c.pendingChildren) == 0
	if ready {
		c.postStopSent = true
	}
	c.mu.Unlock()
	if ready {
		c.ref.SendSystem(PostStop)
	}
}

func (c *Context) onPostStopSelf() {
	c.invoke(PostStop)
	c.setState(StateStopped)

	c.mu.Lock()
	ws := make([]ActorRef, 0, len(c.watchers))
	for _, w := range c.watchers {
		ws = append(ws, w)
	}
	c.mu.Unlock()
	for _, w := range ws {
		w.SendSystem(msgTerminated{Who: c.ref})
	}

	c.system.unregister(c.ref)
	c.setState(StateTerminated)

	if pd, ok := c.dispatcher.(*pinnedDispatcher); ok {
		pd.Close()
	}
}

// --- restart -------------------------------------------------------------

// onRestart replaces a failed actor's behavior and mailbox contents in
// place without touching its children or watchers: a restart does not
// recursively restart or re-spawn existing children.
func (c *Context) onRestart(cause error) {
	c.setState(StateRestarting)
	c.invoke(msgPreRestart{Cause: cause})
	c.invoke(PostStop)
	c.mailbox.purgeUser()
	c.setState(StateStarting)
	c.onPreStart()
}

// --- watch / unwatch -------------------------------------------------------

func (c *Context) onWatch(watcher ActorRef) {
	c.mu.Lock()
	state := c.state
	if state == StateStopped || state == StateTerminated {
		c.mu.Unlock()
		watcher.SendSystem(msgTerminated{Who: c.ref})
		return
	}
	c.watchers[watcher.id] = watcher
	c.mu.Unlock()
}

func (c *Context) onUnwatch(watcher ActorRef) {
	c.mu.Lock()
	delete(c.watchers, watcher.id)
	c.mu.Unlock()
}

// --- child notifications ----------------------------------------------

// onChildTerminated fires on every watcher of a stopped actor, not just
// its parent; only a parent's pendingChildren bookkeeping reacts to it.
func (c *Context) onChildTerminated(msg msgTerminated) {
	c.mu.Lock()
	delete(c.watching, msg.Who.id)
	delete(c.children, msg.Who.id)
	_, wasPending := c.pendingChildren[msg.Who.id]
	if wasPending {
		delete(c.pendingChildren, msg.Who.id)
	}
	c.mu.Unlock()

	c.invoke(msg)

	if wasPending {
		c.finalizeStopIfReady()
	}
}

// onChildFailed is the parent-side supervision decision: reset or
// advance the restart-window counter, escalate past MaxRestarts,
// otherwise dispatch on Strategy. A Failed about an actor that is not
// a child (an escalation seen by a plain watcher) is handed to the
// behavior instead.
func (c *Context) onChildFailed(msg msgFailed) {
	c.mu.Lock()
	_, known := c.children[msg.Who.id]
	c.mu.Unlock()
	if !known {
		c.invoke(msg)
		return
	}

	cfg := c.currentSupervision()
	key := restartKey(msg.Who.id)
	if cfg.Scope == AllForOne {
		key = allForOneKey
	}

	now := time.Now()
	c.mu.Lock()
	rc, ok := c.restartCounters[key]
	if !ok || now.Sub(rc.windowStart) > cfg.Within {
		rc = &restartCounter{windowStart: now}
		c.restartCounters[key] = rc
	}
	rc.count++
	count := rc.count
	c.mu.Unlock()

	targets := c.scopeTargets(cfg.Scope, msg.Who)

	if count > cfg.MaxRestarts {
		for _, t := range targets {
			t.SendSystem(Stop)
		}
		c.notifyWatchers(msgFailed{Who: msg.Who, Cause: msg.Cause})
		return
	}

	switch cfg.Strategy {
	case StrategyRestart:
		delay := backoffDelay(cfg, count)
		for _, t := range targets {
			target := t
			if delay <= 0 {
				target.SendSystem(msgRestart{Cause: msg.Cause})
				continue
			}
			c.system.ScheduleSystemMessage(delay, target, msgRestart{Cause: msg.Cause})
		}
	case StrategyStop:
		for _, t := range targets {
			t.SendSystem(Stop)
		}
	case StrategyResume:
		// no action: the child already resumed itself in failDuringRunning.
	case StrategyEscalate:
		c.notifyWatchers(msgFailed{Who: c.ref, Cause: msg.Cause})
	}
}

func (c *Context) scopeTargets(scope Scope, failingChild ActorRef) []ActorRef {
	if scope == OneForOne {
		return []ActorRef{failingChild}
	}
	return c.Children()
}
