package cache

import "github.com/hupe1980/recstore/internal/resource"

const numShards = 64

// Sharded is a sharded LRU cache for concurrent readers.
// It distributes ids across 64 shards to reduce lock contention.
type Sharded[V any] struct {
	shards [numShards]*LRU[V]
}

// NewSharded creates a new sharded cache.
// The capacity is divided evenly across all shards; each shard holds at least
// one entry unless capacity is zero, which disables caching.
func NewSharded[V any](capacity, entrySize int64, rc *resource.Controller) *Sharded[V] {
	shardCapacity := capacity / numShards
	if capacity > 0 && shardCapacity < entrySize {
		shardCapacity = entrySize
	}

	s := &Sharded[V]{}
	for i := range numShards {
		s.shards[i] = NewLRU[V](shardCapacity, entrySize, rc)
	}
	return s
}

// splitmix64 finalizer; neighbouring ids land on different shards.
func mix(id uint64) uint64 {
	id ^= id >> 30
	id *= 0xbf58476d1ce4e5b9
	id ^= id >> 27
	id *= 0x94d049bb133111eb
	id ^= id >> 31
	return id
}

func (s *Sharded[V]) shard(id uint64) *LRU[V] {
	return s.shards[mix(id)%numShards]
}

// Get returns a cached value.
func (s *Sharded[V]) Get(id uint64) (V, bool) {
	return s.shard(id).Get(id)
}

// Set caches a value.
func (s *Sharded[V]) Set(id uint64, value V) {
	s.shard(id).Set(id, value)
}

// Remove drops id from the cache.
func (s *Sharded[V]) Remove(id uint64) {
	s.shard(id).Remove(id)
}

// Clear empties every shard.
func (s *Sharded[V]) Clear() {
	for i := range numShards {
		s.shards[i].Clear()
	}
}

// Stats returns aggregated hit/miss statistics.
func (s *Sharded[V]) Stats() (hits, misses int64) {
	for i := range numShards {
		h, m := s.shards[i].Stats()
		hits += h
		misses += m
	}
	return hits, misses
}

// Size returns the total size across all shards.
func (s *Sharded[V]) Size() int64 {
	var total int64
	for i := range numShards {
		total += s.shards[i].Size()
	}
	return total
}

// Len returns the total number of entries.
func (s *Sharded[V]) Len() int {
	var n int
	for i := range numShards {
		n += s.shards[i].Len()
	}
	return n
}
