// Package mmap provides read-only memory-mapped access to store files.
//
// Read-only stores serve forced reads straight from a mapping instead of
// issuing one pread per record:
//
//	m, err := mmap.Open("nodestore.db")
//	if err != nil { ... }
//	defer m.Close()
//
//	m.Advise(mmap.AccessSequential)
//	slot, ok, err := m.Slot(id, recordSize)
//
// Unix maps with mmap(2) and honours access hints through madvise(2).
// Windows uses CreateFileMapping/MapViewOfFile and ignores hints.
//
// A Mapping is safe for concurrent reads. Slices returned by Slot must not be
// used after Close.
package mmap
