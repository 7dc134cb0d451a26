package recstore

import (
	"errors"

	"github.com/hupe1980/recstore/store"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed DB or store.
	ErrClosed = store.ErrClosed

	// ErrReadOnly is returned when a write is attempted on a read-only DB.
	ErrReadOnly = store.ErrReadOnly

	// ErrRecordNotFound is returned by cached reads of absent records.
	ErrRecordNotFound = store.ErrRecordNotFound

	// ErrUnsupportedRecordKind is returned when a processor does not handle a store's kind.
	ErrUnsupportedRecordKind = store.ErrUnsupportedRecordKind

	// ErrInvalidConfig is returned when a configuration value cannot be used.
	ErrInvalidConfig = errors.New("invalid configuration")
)
