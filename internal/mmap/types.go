package mmap

import "errors"

// AccessPattern is a paging hint for a mapping.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits full store scans.
	AccessSequential
	// AccessRandom suits reads by id.
	AccessRandom
	AccessWillNeed
)

var (
	ErrClosed      = errors.New("mmap: mapping is closed")
	ErrInvalidSize = errors.New("mmap: file too large to map")
	// ErrInvalidOffset is returned for a non-positive record size.
	ErrInvalidOffset = errors.New("mmap: invalid record size")
)
