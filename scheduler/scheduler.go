// Package scheduler provides delayed, cancellable one-shot callbacks.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// TimerHandle is returned by ScheduleOnce; Cancel is idempotent and safe
// to call after the timer has already fired.
type TimerHandle struct {
	timer     *time.Timer
	cancelled atomic.Bool
}

// Cancel prevents a pending callback from running. It reports whether
// the cancellation won the race against the timer firing.
func (h *TimerHandle) Cancel() bool {
	if h.cancelled.Swap(true) {
		return false
	}
	h.timer.Stop()
	return true
}

// Scheduler issues delayed, cancellable callbacks backed by
// time.AfterFunc. It owns no goroutines of its own beyond what the
// standard library's timer runtime already provides.
type Scheduler struct {
	mu      sync.Mutex
	handles map[*TimerHandle]struct{}
	closed  bool
	log     *zap.Logger
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger sets the logger panicking callbacks are reported through;
// the default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// NewScheduler returns a ready-to-use Scheduler.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		handles: make(map[*TimerHandle]struct{}),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleOnce runs fn once after delay elapses, unless cancelled first.
// A delay <= 0 runs fn on the next available goroutine immediately.
func (s *Scheduler) ScheduleOnce(delay time.Duration, fn func()) *TimerHandle {
	h := &TimerHandle{}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		h.cancelled.Store(true)
		return h
	}
	s.handles[h] = struct{}{}
	s.mu.Unlock()

	h.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.handles, h)
		s.mu.Unlock()
		if h.cancelled.Swap(true) {
			return
		}
		// A panicking callback must not take the timer runtime down
		// with it; log and swallow.
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("scheduled callback panicked",
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
			}
		}()
		fn()
	})
	return h
}

// Close cancels every still-pending timer. It does not wait for
// in-flight callbacks to finish.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	handles := make([]*TimerHandle, 0, len(s.handles))
	for h := range s.handles {
		handles = append(handles, h)
	}
	s.handles = make(map[*TimerHandle]struct{})
	s.mu.Unlock()
	for _, h := range handles {
		h.Cancel()
	}
}
