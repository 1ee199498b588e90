package queue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/lguibr/bollywood/queue"
)

func TestFIFOOrdering(t *testing.T) {
	q := queue.New[int](2)
	for i := 0; i < 5; i++ {
		q.Push(i)
	}
	assert.Equal(t, 5, q.Len())
	for i := 0; i < 5; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestFIFOGrowsPastInitialCapacity(t *testing.T) {
	q := queue.New[int](1)
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	for i := 0; i < 100; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestFIFOPreservesOrderUnderMixedPushPop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := queue.New[int](4)
		var model []int
		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 1, 200).Draw(t, "ops")
		next := 0
		for _, op := range ops {
			if op == 0 || len(model) == 0 {
				q.Push(next)
				model = append(model, next)
				next++
			} else {
				want := model[0]
				model = model[1:]
				got, ok := q.Pop()
				assert.True(t, ok)
				assert.Equal(t, want, got)
			}
		}
		for _, want := range model {
			got, ok := q.Pop()
			assert.True(t, ok)
			assert.Equal(t, want, got)
		}
	})
}
