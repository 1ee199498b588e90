package future

import "errors"

var (
	// ErrAlreadyCompleted is the panic value of a non-try completion
	// method (Success/Failure/Cancel) called on an already-terminal
	// Promise.
	ErrAlreadyCompleted = errors.New("bollywood/future: promise already completed")
	// ErrFutureCancelled is the error Await returns for a Cancelled
	// terminal state.
	ErrFutureCancelled = errors.New("bollywood/future: cancelled")
	// ErrFutureTimeout is returned by Await when the deadline elapses
	// before the promise reaches a terminal state, and by Ask when no
	// reply arrives in time.
	ErrFutureTimeout = errors.New("bollywood/future: timeout")
	// ErrTargetTerminated is the failure an Ask's future completes with
	// when the target reaches Terminated while the ask is still pending.
	ErrTargetTerminated = errors.New("bollywood/future: target terminated")
)
