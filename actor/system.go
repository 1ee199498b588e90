package actor

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lguibr/bollywood/extension"
	"github.com/lguibr/bollywood/scheduler"
)

// DeadLetter records a send that could not be delivered: to an unknown
// or already-terminated actor, or a Reply with no sender.
type DeadLetter struct {
	Target  ActorRef
	Message any
	Reason  string
	At      time.Time
}

var executorExtensionID = extension.NewID[extension.Executor](
	"bollywood.executor",
	func(*extension.Store) extension.Executor { return extension.NewWorkerPool(extension.DefaultExecutorWorkers) },
)

// System is the runtime root: the actor registry, the shared
// dispatchers, the extension store, and the dead-letter sink.
type System struct {
	mu       sync.RWMutex
	registry map[ActorId]*Context

	ids idCounter

	parallelOnce sync.Once
	parallel     Dispatcher

	concurrentOnce sync.Once
	concurrent     Dispatcher

	extensions *extension.Store

	deadLetters chan DeadLetter

	log      *zap.Logger
	stopping atomic.Bool

	rootSupervision SupervisionConfig
}

// SystemOption configures a System at construction time.
type SystemOption func(*System)

// WithLogger overrides the default production zap.Logger.
func WithLogger(l *zap.Logger) SystemOption {
	return func(s *System) { s.log = l }
}

// WithRootSupervision overrides the SupervisionConfig applied to
// top-level actors (those spawned directly off the System rather than
// a parent's Context.Spawn).
func WithRootSupervision(cfg SupervisionConfig) SystemOption {
	return func(s *System) { s.rootSupervision = cfg }
}

// WithDeadLetterBuffer sets the dead-letter channel's buffer size
// (default 256); once full, further dead letters are logged and
// dropped rather than blocking the sender.
func WithDeadLetterBuffer(n int) SystemOption {
	return func(s *System) { s.deadLetters = make(chan DeadLetter, n) }
}

// NewSystem constructs a ready-to-use runtime.
func NewSystem(opts ...SystemOption) *System {
	logger, _ := zap.NewProduction()
	sys := &System{
		registry:        make(map[ActorId]*Context),
		extensions:      extension.NewStore(),
		deadLetters:     make(chan DeadLetter, 256),
		log:             logger,
		rootSupervision: DefaultSupervisionConfig(),
	}
	for _, opt := range opts {
		opt(sys)
	}
	return sys
}

// Extensions exposes the system-wide extension.Store, the door through
// which collaborators registered against a extension.ID are reached.
func (s *System) Extensions() *extension.Store { return s.extensions }

// Scheduler is the system-wide scheduler.Scheduler, resolved through
// the extension registry so it is constructed lazily and exactly once.
func (s *System) Scheduler() *scheduler.Scheduler {
	return extension.Get(s.extensions, extension.NewID("bollywood.scheduler",
		func(*extension.Store) *scheduler.Scheduler {
			return scheduler.NewScheduler(scheduler.WithLogger(s.log))
		}))
}

// Executor is the system-wide blocking-work offload pool.
func (s *System) Executor() extension.Executor {
	return extension.Get(s.extensions, executorExtensionID)
}

func (s *System) sharedParallelDispatcher() Dispatcher {
	s.parallelOnce.Do(func() { s.parallel = NewParallelDispatcher(DefaultParallelWorkers) })
	return s.parallel
}

func (s *System) sharedConcurrentDispatcher() Dispatcher {
	s.concurrentOnce.Do(func() { s.concurrent = NewConcurrentDispatcher() })
	return s.concurrent
}

// Spawn creates a top-level actor with no parent (the zero ActorRef
// stands in for a user-guardian).
func (s *System) Spawn(initial Factory, opts ...SpawnOption) ActorRef {
	return s.spawn(ActorRef{}, initial, opts...)
}

func (s *System) spawn(parent ActorRef, initial Factory, opts ...SpawnOption) ActorRef {
	cfg := defaultSpawnConfig()
	if parent.IsZero() {
		cfg.supervision = s.rootSupervision
	} else if !parent.system.sameAs(s) {
		panic("bollywood: parent belongs to a different System")
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if s.stopping.Load() {
		s.deadLetter(ActorRef{}, initial, "system is stopping")
		return ActorRef{}
	}

	id := s.ids.nextID()
	ctx := newContext(s, id, parent, initial, cfg.dispatcherKind, cfg.throughput, cfg.supervision)

	s.mu.Lock()
	s.registry[id] = ctx
	s.mu.Unlock()

	if !parent.IsZero() {
		parentCtx := s.lookup(parent)
		if parentCtx != nil {
			parentCtx.mu.Lock()
			parentCtx.children[id] = ctx.ref
			parentCtx.watching[id] = ctx.ref
			parentCtx.mu.Unlock()

			ctx.mu.Lock()
			ctx.watchers[parent.id] = parent
			ctx.mu.Unlock()
		}
	}

	ctx.start()
	return ctx.ref
}

func (s *System) sameAs(other *System) bool { return s == other }

// Stop requests ref gracefully stop.
func (s *System) Stop(ref ActorRef) {
	ref.SendSystem(Stop)
}

func (s *System) lookup(ref ActorRef) *Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[ref.id]
}

func (s *System) unregister(ref ActorRef) {
	s.mu.Lock()
	delete(s.registry, ref.id)
	s.mu.Unlock()
}

func (s *System) deliverUser(target ActorRef, e Envelope) {
	ctx := s.lookup(target)
	if ctx == nil {
		s.deadLetter(target, e.Message, "unknown or terminated actor")
		return
	}
	ctx.mailbox.sendUser(e)
}

func (s *System) deliverSystem(target ActorRef, e Envelope) {
	ctx := s.lookup(target)
	if ctx == nil {
		// Watching an actor that is already gone reports it terminated.
		if w, ok := e.Message.(msgWatch); ok {
			w.Watcher.SendSystem(msgTerminated{Who: target})
			return
		}
		s.deadLetter(target, e.Message, "unknown or terminated actor")
		return
	}
	ctx.mailbox.sendSystem(e)
}

func (s *System) deadLetter(target ActorRef, message any, reason string) {
	s.log.Warn("dead letter",
		zap.Stringer("target", target),
		zap.String("reason", reason),
	)
	letter := DeadLetter{Target: target, Message: message, Reason: reason, At: time.Now()}
	select {
	case s.deadLetters <- letter:
	default:
		s.log.Warn("dead letter buffer full, dropping", zap.String("reason", reason))
	}
}

// DeadLetters exposes the stream of undeliverable sends.
func (s *System) DeadLetters() <-chan DeadLetter { return s.deadLetters }

// ScheduleMessage delivers message to target as a user message after
// delay, returning a cancel function. It is a thin adapter over
// Scheduler().ScheduleOnce that exists because the scheduler package
// cannot itself name ActorRef without an import cycle.
func (s *System) ScheduleMessage(delay time.Duration, target ActorRef, message any) func() bool {
	h := s.Scheduler().ScheduleOnce(delay, func() { target.Tell(message) })
	return h.Cancel
}

// ScheduleSystemMessage is ScheduleMessage's system-queue counterpart,
// used by supervision to delay a RESTART directive's backoff.
func (s *System) ScheduleSystemMessage(delay time.Duration, target ActorRef, signal systemMessage) func() bool {
	h := s.Scheduler().ScheduleOnce(delay, func() { target.SendSystem(signal) })
	return h.Cancel
}

// Shutdown stops every registered actor and waits up to timeout for the
// registry to drain.
func (s *System) Shutdown(timeout time.Duration) {
	if !s.stopping.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("system shutdown initiated")

	s.mu.RLock()
	refs := make([]ActorRef, 0, len(s.registry))
	for _, ctx := range s.registry {
		refs = append(refs, ctx.ref)
	}
	s.mu.RUnlock()
	for _, ref := range refs {
		ref.SendSystem(Stop)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.RLock()
		remaining := len(s.registry)
		s.mu.RUnlock()
		if remaining == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.mu.Lock()
	remaining := len(s.registry)
	if remaining > 0 {
		s.log.Warn("shutdown timed out with actors still registered", zap.Int("remaining", remaining))
		s.registry = make(map[ActorId]*Context)
	}
	s.mu.Unlock()

	if s.parallel != nil {
		s.parallel.Close()
	}
	if s.concurrent != nil {
		s.concurrent.Close()
	}
	s.Scheduler().Close()
	s.log.Info("system shutdown complete")
}
