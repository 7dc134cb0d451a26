package testutil

import (
	"math/rand"
	"sync"
)

// RNG encapsulates a seeded random number generator.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Sample returns k distinct ids from [0, n) in ascending order.
func (r *RNG) Sample(n, k int) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	k = min(k, n)
	perm := r.rand.Perm(n)[:k]
	out := make([]uint64, 0, k)
	picked := make([]bool, n)
	for _, i := range perm {
		picked[i] = true
	}
	for i, ok := range picked {
		if ok {
			out = append(out, uint64(i))
		}
	}
	return out
}

// Shuffle permutes ids in place.
func (r *RNG) Shuffle(ids []uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}
