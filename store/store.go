package store

import "github.com/hupe1980/recstore/record"

// Descriptor is the kind-independent view of a store, enough to report on it.
type Descriptor interface {
	Kind() record.Kind
	// HighID returns the highest allocated id. It is the inclusive bound of a
	// full scan and never decreases.
	HighID() uint64
	RecordSize() int
	RecordHeaderSize() int
}

// RecordStore is a store of fixed-size records of one kind.
type RecordStore[R record.Record] interface {
	Descriptor

	// GetRecord returns the record through the cache. Ids beyond HighID,
	// records not in use and unreadable slots fail with a RecordNotFoundError.
	GetRecord(id uint64) (R, error)
	// UpdateRecord buffers rec in the cache and the dirty set.
	UpdateRecord(rec R) error

	// ForceGetRecord reads the slot directly. It reports only I/O errors;
	// absence is InUse() == false.
	ForceGetRecord(id uint64) (R, error)
	// ForceGetRaw is ForceGetRecord without normalisation of freed slots.
	ForceGetRaw(id uint64) (R, error)
	// ForceUpdateRecord writes rec directly, bypassing the dirty set.
	ForceUpdateRecord(rec R) error

	// Accept hands rec to the handler of p for this store's kind.
	Accept(p *Processor, rec R) error

	Close() error
}

var (
	_ RecordStore[*record.Node]    = (*FileStore[*record.Node])(nil)
	_ RecordStore[*record.Dynamic] = (*FileStore[*record.Dynamic])(nil)
)
