package store

import (
	"fmt"

	"github.com/hupe1980/recstore/record"
)

// Processor is a set of per-kind record handlers.
//
// A nil handler means the kind is not processed; applying the processor to such
// a store fails with an UnsupportedRecordKindError. String and Array fall back
// to Dynamic.
type Processor struct {
	// Name identifies the processor in errors and logs.
	Name string

	Node             func(RecordStore[*record.Node], *record.Node) error
	Relationship     func(RecordStore[*record.Relationship], *record.Relationship) error
	Property         func(RecordStore[*record.Property], *record.Property) error
	String           func(RecordStore[*record.Dynamic], *record.Dynamic) error
	Array            func(RecordStore[*record.Dynamic], *record.Dynamic) error
	Dynamic          func(RecordStore[*record.Dynamic], *record.Dynamic) error
	RelationshipType func(RecordStore[*record.RelationshipType], *record.RelationshipType) error
	PropertyIndex    func(RecordStore[*record.PropertyIndex], *record.PropertyIndex) error

	// ProgressInit creates the sink for a filtered apply over store. A nil
	// ProgressInit, or a nil sink, disables progress reporting.
	ProgressInit func(store Descriptor, highID uint64) ProgressSink
}

func (p *Processor) name() string {
	if p.Name != "" {
		return p.Name
	}
	return "Processor"
}

// Supports reports whether p has a handler for kind.
func (p *Processor) Supports(kind record.Kind) bool {
	switch kind {
	case record.KindNode:
		return p.Node != nil
	case record.KindRelationship:
		return p.Relationship != nil
	case record.KindProperty:
		return p.Property != nil
	case record.KindString:
		return p.String != nil || p.Dynamic != nil
	case record.KindArray:
		return p.Array != nil || p.Dynamic != nil
	case record.KindRelationshipType:
		return p.RelationshipType != nil
	case record.KindPropertyIndex:
		return p.PropertyIndex != nil
	default:
		return false
	}
}

// Dispatch routes rec to the handler of p for the kind of s. RecordStore
// implementations call it from Accept.
func Dispatch[R record.Record](p *Processor, s RecordStore[R], rec R) error {
	kind := s.Kind()
	switch kind {
	case record.KindNode:
		return invoke(p, kind, p.Node, s, rec)
	case record.KindRelationship:
		return invoke(p, kind, p.Relationship, s, rec)
	case record.KindProperty:
		return invoke(p, kind, p.Property, s, rec)
	case record.KindString:
		return invoke(p, kind, orDynamic(p.String, p.Dynamic), s, rec)
	case record.KindArray:
		return invoke(p, kind, orDynamic(p.Array, p.Dynamic), s, rec)
	case record.KindRelationshipType:
		return invoke(p, kind, p.RelationshipType, s, rec)
	case record.KindPropertyIndex:
		return invoke(p, kind, p.PropertyIndex, s, rec)
	default:
		return &UnsupportedRecordKindError{Processor: p.name(), Kind: kind}
	}
}

func orDynamic(
	h, fallback func(RecordStore[*record.Dynamic], *record.Dynamic) error,
) func(RecordStore[*record.Dynamic], *record.Dynamic) error {
	if h != nil {
		return h
	}
	return fallback
}

func invoke[T, R record.Record](p *Processor, kind record.Kind, h func(RecordStore[T], T) error, s RecordStore[R], rec R) error {
	if h == nil {
		return &UnsupportedRecordKindError{Processor: p.name(), Kind: kind}
	}
	ts, ok := any(s).(RecordStore[T])
	if !ok {
		return fmt.Errorf("%w: %s store of type %T", record.ErrKindMismatch, kind, s)
	}
	trec, ok := any(rec).(T)
	if !ok {
		return fmt.Errorf("%w: %T in %s store", record.ErrKindMismatch, rec, kind)
	}
	return h(ts, trec)
}

// Handle installs h as the handler of p for the record type R and returns p.
// Dynamic blocks install the shared Dynamic handler. Handle panics when R is
// not one of the record types of package record.
func Handle[R record.Record](p *Processor, h func(RecordStore[R], R) error) *Processor {
	switch h := any(h).(type) {
	case func(RecordStore[*record.Node], *record.Node) error:
		p.Node = h
	case func(RecordStore[*record.Relationship], *record.Relationship) error:
		p.Relationship = h
	case func(RecordStore[*record.Property], *record.Property) error:
		p.Property = h
	case func(RecordStore[*record.Dynamic], *record.Dynamic) error:
		p.Dynamic = h
	case func(RecordStore[*record.RelationshipType], *record.RelationshipType) error:
		p.RelationshipType = h
	case func(RecordStore[*record.PropertyIndex], *record.PropertyIndex) error:
		p.PropertyIndex = h
	default:
		var zero R
		panic(fmt.Sprintf("store: processor %s has no handler field for %T records", p.Name, zero))
	}
	return p
}
