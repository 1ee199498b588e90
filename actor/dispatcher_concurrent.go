package actor

import (
	"sync"

	"github.com/lguibr/bollywood/queue"
)

// concurrentDispatcher multiplexes every mailbox scheduled onto it over
// a single goroutine, draining one mailbox to completion before moving
// to the next. Unlike pinnedDispatcher it is shared across many actors,
// so schedule requests queue rather than being collapsed to one slot.
type concurrentDispatcher struct {
	mu     sync.Mutex
	ready  *queue.FIFO[*Mailbox]
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// NewConcurrentDispatcher starts the single cooperative worker goroutine.
func NewConcurrentDispatcher() Dispatcher {
	d := &concurrentDispatcher{
		ready: queue.New[*Mailbox](16),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *concurrentDispatcher) schedule(m *Mailbox) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.ready.Push(m)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *concurrentDispatcher) run() {
	for {
		d.mu.Lock()
		m, ok := d.ready.Pop()
		d.mu.Unlock()
		if ok {
			m.drain()
			continue
		}
		select {
		case <-d.wake:
			continue
		case <-d.done:
			return
		}
	}
}

func (d *concurrentDispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	close(d.done)
}
