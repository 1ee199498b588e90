package extension

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConstructsOncePerStore(t *testing.T) {
	calls := 0
	id := NewID("test.counter", func(*Store) *int {
		calls++
		v := 42
		return &v
	})

	s := NewStore()
	first := Get(s, id)
	second := Get(s, id)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestStoresAreIsolated(t *testing.T) {
	id := NewID("test.value", func(*Store) *int {
		v := 0
		return &v
	})

	a := Get(NewStore(), id)
	b := Get(NewStore(), id)
	assert.NotSame(t, a, b)
}

func TestDistinctIDsGetDistinctInstances(t *testing.T) {
	s := NewStore()
	idA := NewID("test.a", func(*Store) *int { v := 1; return &v })
	idB := NewID("test.b", func(*Store) *int { v := 2; return &v })

	assert.Equal(t, 1, *Get(s, idA))
	assert.Equal(t, 2, *Get(s, idB))
}
