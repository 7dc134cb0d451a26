package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/recstore/internal/resource"
)

// LRU is a byte-bounded least-recently-used cache keyed by record id.
type LRU[V any] struct {
	mu        sync.Mutex
	capacity  int64
	entrySize int64
	size      int64
	items     map[uint64]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry[V any] struct {
	key   uint64
	value V
}

// NewLRU creates a cache holding at most capacity bytes, charging entrySize
// bytes per entry. If rc is provided, it will be used to track memory usage.
func NewLRU[V any](capacity, entrySize int64, rc *resource.Controller) *LRU[V] {
	if entrySize <= 0 {
		entrySize = 1
	}
	return &LRU[V]{
		capacity:  capacity,
		entrySize: entrySize,
		items:     make(map[uint64]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached value.
func (c *LRU[V]) Get(key uint64) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry[V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set caches a value, replacing any previous value for key.
func (c *LRU[V]) Set(key uint64, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry[V]).value = value
		return
	}

	if c.entrySize > c.capacity {
		return
	}

	for c.size+c.entrySize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	// If the global controller says no, don't cache.
	if c.rc != nil && !c.rc.TryAcquireMemory(c.entrySize) {
		return
	}

	element := c.evictList.PushFront(&entry[V]{key, value})
	c.items[key] = element
	c.size += c.entrySize
}

// Remove drops key from the cache.
func (c *LRU[V]) Remove(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)
	}
}

// Clear drops every entry and releases its memory.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

// Stats returns hit and miss counters.
func (c *LRU[V]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the current size of the cache in bytes.
func (c *LRU[V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached entries.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[V]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[V])
	delete(c.items, kv.key)
	c.size -= c.entrySize
	if c.rc != nil {
		c.rc.ReleaseMemory(c.entrySize)
	}
}
