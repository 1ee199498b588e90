package actor

// Dispatcher schedules mailbox drains onto one of its workers. schedule
// is called with a mailbox that has just transitioned from idle to
// scheduled; the dispatcher must eventually invoke mailbox.drain()
// exactly once per schedule call.
type Dispatcher interface {
	schedule(m *Mailbox)
	// Close releases any goroutines/resources owned by the dispatcher.
	// Mailboxes already scheduled are allowed to finish draining.
	Close()
}

// DispatcherKind selects one of the three dispatcher variants.
type DispatcherKind int

const (
	// KindParallel runs any actor on any of a fixed pool of workers, at
	// most one worker per actor at a time (enforced by the mailbox's
	// processing flag). This is the default.
	KindParallel DispatcherKind = iota
	// KindPinned dedicates one goroutine per actor: deterministic,
	// suitable for actors with strong ordering needs or blocking I/O
	// they isolate themselves.
	KindPinned
	// KindConcurrent cooperatively multiplexes every actor assigned to
	// it onto a single goroutine.
	KindConcurrent
)
