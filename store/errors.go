package store

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recstore/record"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("store closed")

	// ErrReadOnly is returned when a write is attempted on a read-only store.
	ErrReadOnly = errors.New("store is read-only")

	// ErrInvalidID is returned for ids that cannot address a record.
	ErrInvalidID = errors.New("invalid record id")

	// ErrRecordNotFound is matched by every RecordNotFoundError.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnsupportedRecordKind is matched by every UnsupportedRecordKindError.
	ErrUnsupportedRecordKind = errors.New("unsupported record kind")

	// ErrInvalidFilterSpecification is matched by every InvalidFilterSpecificationError.
	ErrInvalidFilterSpecification = errors.New("invalid filter specification")
)

// RecordNotFoundError is returned by cached reads of ids that are beyond the
// high id, not in use, or unreadable.
//
// The underlying read error (if any) can be accessed via errors.Unwrap.
type RecordNotFoundError struct {
	Kind  record.Kind
	ID    uint64
	cause error
}

func (e *RecordNotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s record %d not found: %v", e.Kind, e.ID, e.cause)
	}
	return fmt.Sprintf("%s record %d not found", e.Kind, e.ID)
}

func (e *RecordNotFoundError) Unwrap() error { return e.cause }

func (e *RecordNotFoundError) Is(target error) bool { return target == ErrRecordNotFound }

// UnsupportedRecordKindError is returned when a processor has no handler for
// the kind of a store it is applied to.
type UnsupportedRecordKindError struct {
	Processor string
	Kind      record.Kind
}

func (e *UnsupportedRecordKindError) Error() string {
	return fmt.Sprintf("%s does not process %s records", e.Processor, e.Kind)
}

func (e *UnsupportedRecordKindError) Is(target error) bool {
	return target == ErrUnsupportedRecordKind
}

// InvalidFilterSpecificationError is returned by ParseFilter.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidFilterSpecificationError struct {
	Value string
	cause error
}

func (e *InvalidFilterSpecificationError) Error() string {
	return fmt.Sprintf("invalid filter specification '%s': the format is [true/false] or [key1=value1,key2=value2...]", e.Value)
}

func (e *InvalidFilterSpecificationError) Unwrap() error { return e.cause }

func (e *InvalidFilterSpecificationError) Is(target error) bool {
	return target == ErrInvalidFilterSpecification
}
