package future

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseSingleAssignment(t *testing.T) {
	p := NewPromise[int]()
	assert.True(t, p.TrySuccess(42))
	assert.False(t, p.TrySuccess(7), "second try_success must report false and not mutate")

	v, err := p.Future().Await(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestNonTryFormPanicsOnDoubleCompletion(t *testing.T) {
	p := NewPromise[int]()
	p.Success(1)
	assert.PanicsWithValue(t, ErrAlreadyCompleted, func() { p.Success(2) })
}

func TestAwaitTimeoutDoesNotAffectPromise(t *testing.T) {
	p := NewPromise[int]()
	_, err := p.Future().Await(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrFutureTimeout)

	p.Success(9)
	v, err := p.Future().Await(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestOnCompleteFiresImmediatelyWhenAlreadyTerminal(t *testing.T) {
	p := NewPromise[string]()
	p.Success("done")

	var got string
	p.Future().OnSuccess(func(v string) { got = v })
	assert.Equal(t, "done", got)
}

func TestOnCompleteFiresOnceOnLaterCompletion(t *testing.T) {
	p := NewPromise[string]()
	var calls int32
	p.Future().OnComplete(func(Future[string]) { atomic.AddInt32(&calls, 1) })
	p.Success("x")
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
}

func TestCancelledSubscriptionDoesNotFire(t *testing.T) {
	p := NewPromise[int]()
	called := false
	sub := p.Future().OnSuccess(func(int) { called = true })
	sub.Cancel()
	p.Success(1)
	assert.False(t, called)
}

func TestCancelAfterSuccessHasNoEffect(t *testing.T) {
	p := NewPromise[int]()
	p.TrySuccess(5)
	assert.False(t, p.TryCancel())

	v, err := p.Future().Await(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}
