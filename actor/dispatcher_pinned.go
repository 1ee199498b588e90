package actor

// pinnedDispatcher dedicates a single goroutine to draining one actor's
// mailbox. schedule is cheap and non-blocking: it posts to a
// capacity-one signal channel only the dedicated goroutine reads, which
// is safe because schedule is only ever invoked on an idle->scheduled
// transition (enforced by the mailbox) so at most one pending signal
// can exist at a time.
type pinnedDispatcher struct {
	signal chan *Mailbox
	done   chan struct{}
}

// NewPinnedDispatcher starts the dedicated worker goroutine and returns
// a Dispatcher bound to exactly one actor's mailbox over its lifetime.
func NewPinnedDispatcher() Dispatcher {
	d := &pinnedDispatcher{
		signal: make(chan *Mailbox, 1),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *pinnedDispatcher) run() {
	for {
		select {
		case m := <-d.signal:
			m.drain()
		case <-d.done:
			return
		}
	}
}

func (d *pinnedDispatcher) schedule(m *Mailbox) {
	select {
	case d.signal <- m:
	default:
		// A signal is already pending; the dedicated goroutine will
		// observe the mailbox's non-empty queues on its next drain.
	}
}

func (d *pinnedDispatcher) Close() {
	close(d.done)
}
