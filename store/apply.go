package store

import (
	"iter"

	"github.com/hupe1980/recstore/record"
)

// ApplyByID hands the records with the given ids to p, in input order.
func ApplyByID[R record.Record](p *Processor, s RecordStore[R], ids iter.Seq[uint64]) error {
	return apply(p, s, ScanByID(s, ids), nil, 0)
}

// ApplyFiltered hands every record of s that passes all filters to p, in id
// order. Progress is reported to the sink created by p.ProgressInit, if any.
func ApplyFiltered[R record.Record](p *Processor, s RecordStore[R], filters ...Predicate[R]) error {
	return ApplyFilteredWithProgress(p, s, nil, filters...)
}

// ApplyFilteredWithProgress is ApplyFiltered reporting to sink. A nil sink
// falls back to p.ProgressInit.
func ApplyFilteredWithProgress[R record.Record](p *Processor, s RecordStore[R], sink ProgressSink, filters ...Predicate[R]) error {
	high := s.HighID()
	if sink == nil && p.ProgressInit != nil {
		sink = p.ProgressInit(s, high)
	}
	return apply(p, s, scanTo(s, high, filters), sink, high)
}

// apply stops at the first read or handler error; the sink then keeps the
// partial progress and is not told Done.
func apply[R record.Record](p *Processor, s RecordStore[R], seq iter.Seq2[R, error], sink ProgressSink, high uint64) error {
	for rec, err := range seq {
		if err != nil {
			return err
		}
		if err := s.Accept(p, rec); err != nil {
			return err
		}
		if sink != nil {
			sink.Update(false, rec.ID())
		}
	}
	if sink != nil {
		sink.Done(high)
	}
	return nil
}
