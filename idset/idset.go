// Package idset provides compressed sets of record identifiers.
package idset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Set is a set of record identifiers backed by a 64-bit roaring bitmap.
// The zero value is not usable; use New, Of or Collect.
type Set struct {
	bm *roaring64.Bitmap
}

// New returns an empty set.
func New() *Set {
	return &Set{bm: roaring64.New()}
}

// Of returns a set holding ids.
func Of(ids ...uint64) *Set {
	s := New()
	s.bm.AddMany(ids)
	return s
}

// Collect drains seq into a new set.
func Collect(seq iter.Seq[uint64]) *Set {
	s := New()
	for id := range seq {
		s.bm.Add(id)
	}
	return s
}

// Add inserts id.
func (s *Set) Add(id uint64) {
	s.bm.Add(id)
}

// Remove deletes id.
func (s *Set) Remove(id uint64) {
	s.bm.Remove(id)
}

// Contains reports whether id is in the set.
func (s *Set) Contains(id uint64) bool {
	return s.bm.Contains(id)
}

// Len returns the number of ids.
func (s *Set) Len() int {
	return int(s.bm.GetCardinality())
}

// IsEmpty reports whether the set holds no ids.
func (s *Set) IsEmpty() bool {
	return s.bm.IsEmpty()
}

// Union adds every id of other.
func (s *Set) Union(other *Set) {
	s.bm.Or(other.bm)
}

// Seq yields the ids in ascending order.
func (s *Set) Seq() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToSlice returns the ids in ascending order.
func (s *Set) ToSlice() []uint64 {
	return s.bm.ToArray()
}
