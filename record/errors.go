package record

import "errors"

var (
	// ErrShortBuffer is returned when a buffer is smaller than the record size.
	ErrShortBuffer = errors.New("record: buffer shorter than record size")

	// ErrCorruptRecord is returned when a slot cannot be decoded into a valid record.
	ErrCorruptRecord = errors.New("record: corrupt record")

	// ErrKindMismatch is returned when a record does not belong to the format's kind.
	ErrKindMismatch = errors.New("record: kind mismatch")
)
