package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping is a read-only memory mapping of a record store file.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// Open maps the store file at path read-only. An empty file yields an empty
// mapping; its slots are all beyond the end.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path) //nolint:gosec // G304: store paths are configured
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the file. Later calls are no-ops.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.data == nil {
		return nil
	}
	return m.unmap(m.data)
}

// Len returns the mapped length in bytes.
func (m *Mapping) Len() int {
	return len(m.data)
}

// Slots returns how many whole records of recordSize bytes are mapped.
func (m *Mapping) Slots(recordSize int) uint64 {
	if recordSize <= 0 {
		return 0
	}
	return uint64(len(m.data) / recordSize)
}

// Slot returns the mapped bytes of the record with the given id. The slice
// aliases the mapping and is only valid until Close. ok is false when the
// slot lies past the end of the mapping, including a trailing partial record.
func (m *Mapping) Slot(id uint64, recordSize int) (b []byte, ok bool, err error) {
	if m.closed.Load() {
		return nil, false, ErrClosed
	}
	if recordSize <= 0 {
		return nil, false, ErrInvalidOffset
	}
	if id >= m.Slots(recordSize) {
		return nil, false, nil
	}
	off := int(id) * recordSize
	return m.data[off : off+recordSize : off+recordSize], true, nil
}

// Advise hints the kernel how the mapped records will be read.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return osAdvise(m.data, pattern)
}
