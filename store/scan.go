package store

import (
	"iter"

	"github.com/hupe1980/recstore/record"
)

// Scan returns the records 0..=HighID of s in id order that pass every filter.
//
// HighID is read when iteration starts, so each range over the result is an
// independent pass. Records are read with ForceGetRecord; a read error is
// yielded once and ends the sequence.
func Scan[R record.Record](s RecordStore[R], filters ...Predicate[R]) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		scanTo(s, s.HighID(), filters)(yield)
	}
}

func scanTo[R record.Record](s RecordStore[R], high uint64, filters []Predicate[R]) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for id := uint64(0); id <= high; id++ {
			rec, err := s.ForceGetRecord(id)
			if err != nil {
				var zero R
				yield(zero, err)
				return
			}
			if !matches(rec, filters) {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ScanByID returns one record per id of ids, in input order. No filtering is
// applied; ids of free slots yield records that are not in use.
func ScanByID[R record.Record](s RecordStore[R], ids iter.Seq[uint64]) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for id := range ids {
			rec, err := s.ForceGetRecord(id)
			if err != nil {
				var zero R
				yield(zero, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
