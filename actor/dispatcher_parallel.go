package actor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultParallelWorkers is the pool size of the System's shared
// parallel dispatcher. The config key dispatcher.parallel.workers is not
// read by the System; this size is always used.
const DefaultParallelWorkers = 24

// parallelDispatcher runs mailbox drains across a fixed-size worker
// pool. Any actor may run on any worker; the mailbox's own
// processing flag still guarantees at most one worker per actor.
// Capacity is enforced with a weighted semaphore rather than a
// bounded channel pool so that a burst of schedules queues fairly
// without a dedicated dispatch goroutine.
type parallelDispatcher struct {
	sem  *semaphore.Weighted
	wg   sync.WaitGroup
	once sync.Once
	done chan struct{}
}

// NewParallelDispatcher builds a dispatcher backed by workers
// concurrent drains. workers <= 0 falls back to DefaultParallelWorkers.
func NewParallelDispatcher(workers int) Dispatcher {
	if workers <= 0 {
		workers = DefaultParallelWorkers
	}
	return &parallelDispatcher{
		sem:  semaphore.NewWeighted(int64(workers)),
		done: make(chan struct{}),
	}
}

func (d *parallelDispatcher) schedule(m *Mailbox) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.sem.Acquire(context.Background(), 1)
		defer d.sem.Release(1)
		m.drain()
	}()
}

func (d *parallelDispatcher) Close() {
	d.once.Do(func() { close(d.done) })
	d.wg.Wait()
}
