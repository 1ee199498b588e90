package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleOnceFires(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	s.ScheduleOnce(5*time.Millisecond, func() { fired.Store(true) })

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
}

func TestCancelBeforeFirePreventsCallback(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	var fired atomic.Bool
	h := s.ScheduleOnce(50*time.Millisecond, func() { fired.Store(true) })
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel(), "second cancel should report no-op")

	time.Sleep(100 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestCloseCancelsPending(t *testing.T) {
	s := NewScheduler()
	var fired atomic.Bool
	s.ScheduleOnce(100*time.Millisecond, func() { fired.Store(true) })
	s.Close()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, fired.Load())
}
