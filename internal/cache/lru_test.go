package cache

import (
	"sync"
	"testing"

	"github.com/hupe1980/recstore/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string](30, 10, nil)

	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	v, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	// 1 was touched, so 2 is the eviction victim.
	c.Set(4, "four")
	_, ok = c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(4)
	assert.True(t, ok)
	assert.Equal(t, int64(30), c.Size())
	assert.Equal(t, 3, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRU_Replace(t *testing.T) {
	c := NewLRU[int](100, 10, nil)
	c.Set(7, 1)
	c.Set(7, 2)

	v, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, int64(10), c.Size())
}

func TestLRU_EntryLargerThanCapacity(t *testing.T) {
	c := NewLRU[int](5, 10, nil)
	c.Set(1, 1)
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestLRU_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 20})
	c := NewLRU[int](100, 10, rc)

	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3) // denied by the controller

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(20), rc.MemoryUsage())

	c.Remove(1)
	assert.Equal(t, int64(10), rc.MemoryUsage())

	c.Clear()
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, int64(0), c.Size())
}

func TestSharded_Concurrent(t *testing.T) {
	s := NewSharded[uint64](64*1024, 16, nil)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 200 {
				id := uint64(g*1000 + i)
				s.Set(id, id*2)
				v, ok := s.Get(id)
				if ok {
					assert.Equal(t, id*2, v)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Positive(t, s.Len())
	assert.Equal(t, int64(s.Len())*16, s.Size())

	s.Remove(5)
	_, ok := s.Get(5)
	assert.False(t, ok)

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestSharded_ZeroCapacityDisables(t *testing.T) {
	s := NewSharded[uint64](0, 16, nil)
	s.Set(1, 1)
	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}
