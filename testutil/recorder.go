package testutil

import (
	"slices"
	"sync"

	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// Visit is one record handed to a Recorder.
type Visit struct {
	Kind  record.Kind
	ID    uint64
	InUse bool
}

// Recorder records the records its processor is applied to.
type Recorder struct {
	// Err, when set, is returned by the handler for FailAt.
	Err    error
	FailAt uint64

	mu     sync.Mutex
	visits []Visit
}

// Processor returns a processor handling every kind.
func (r *Recorder) Processor() *store.Processor {
	p := &store.Processor{Name: "recorder"}
	store.Handle(p, recordInto[*record.Node](r))
	store.Handle(p, recordInto[*record.Relationship](r))
	store.Handle(p, recordInto[*record.Property](r))
	store.Handle(p, recordInto[*record.Dynamic](r))
	store.Handle(p, recordInto[*record.RelationshipType](r))
	store.Handle(p, recordInto[*record.PropertyIndex](r))
	return p
}

func recordInto[R record.Record](r *Recorder) func(store.RecordStore[R], R) error {
	return func(s store.RecordStore[R], rec R) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.Err != nil && rec.ID() == r.FailAt {
			return r.Err
		}
		r.visits = append(r.visits, Visit{Kind: s.Kind(), ID: rec.ID(), InUse: rec.InUse()})
		return nil
	}
}

// Visits returns all visits in order.
func (r *Recorder) Visits() []Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.visits)
}

// IDs returns the visited ids of kind in order.
func (r *Recorder) IDs(kind record.Kind) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint64
	for _, v := range r.visits {
		if v.Kind == kind {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// Reset forgets all visits.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visits = nil
}

// SinkEvent is one call received by a RecordingSink.
type SinkEvent struct {
	Done     bool
	Explicit bool
	Value    uint64
}

// RecordingSink is a store.ProgressSink that keeps every call.
type RecordingSink struct {
	mu     sync.Mutex
	events []SinkEvent
}

var _ store.ProgressSink = (*RecordingSink)(nil)

// Update implements store.ProgressSink.
func (s *RecordingSink) Update(explicit bool, position uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, SinkEvent{Explicit: explicit, Value: position})
}

// Done implements store.ProgressSink.
func (s *RecordingSink) Done(total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, SinkEvent{Done: true, Value: total})
}

// Events returns the calls in order.
func (s *RecordingSink) Events() []SinkEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Init returns a store.Processor ProgressInit func that hands out s.
func (s *RecordingSink) Init() func(store.Descriptor, uint64) store.ProgressSink {
	return func(store.Descriptor, uint64) store.ProgressSink { return s }
}
