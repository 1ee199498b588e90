package extension

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Executor offloads blocking work off an actor's own goroutine: a
// behavior hands work to Submit and replies to itself (or an asker)
// once the result is back, instead of blocking the dispatcher worker
// it runs on.
type Executor interface {
	// Submit runs fn on a bounded worker pool, blocking the caller until
	// a worker slot is free or ctx is cancelled.
	Submit(ctx context.Context, fn func() error) error
	// Close waits for in-flight work and returns its first error.
	// WorkerPool still accepts Submit calls after Close.
	Close() error
}

// DefaultExecutorWorkers bounds concurrent blocking offloads when no
// explicit worker count is configured.
const DefaultExecutorWorkers = 8

// WorkerPool is the one concrete Executor: a semaphore-gated pool whose
// Close waits for in-flight work before returning.
type WorkerPool struct {
	sem *semaphore.Weighted
	g   *errgroup.Group
}

// NewWorkerPool builds an Executor bounded to workers concurrent
// in-flight submissions; workers <= 0 falls back to
// DefaultExecutorWorkers.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = DefaultExecutorWorkers
	}
	return &WorkerPool{
		sem: semaphore.NewWeighted(int64(workers)),
		g:   &errgroup.Group{},
	}
}

func (p *WorkerPool) Submit(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.g.Go(func() error {
		defer p.sem.Release(1)
		return fn()
	})
	return nil
}

func (p *WorkerPool) Close() error {
	return p.g.Wait()
}
