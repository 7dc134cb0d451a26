package record

import "math"

// NoID marks an absent record reference.
const NoID uint64 = math.MaxUint64

const (
	flagInUse      byte = 1 << 0
	flagStartBlock byte = 1 << 1
)

// Record is the common view of every persisted record.
type Record interface {
	ID() uint64
	InUse() bool
	SetInUse(inUse bool)
	Kind() Kind
}

// Base carries the identity shared by all record types.
type Base struct {
	id    uint64
	inUse bool
	// flags holds header bits without a decoded meaning; only raw reads keep them.
	flags byte
}

// ID returns the record identifier.
func (b *Base) ID() uint64 { return b.id }

// InUse reports whether the slot holds a live entity.
func (b *Base) InUse() bool { return b.inUse }

// SetInUse marks the slot live or free.
func (b *Base) SetInUse(inUse bool) { b.inUse = inUse }

// Flags returns the header byte the record encodes to, excluding the dynamic
// start-block bit. Only raw reads preserve bits other than the in-use bit.
func (b *Base) Flags() byte { return b.header() }

func (b *Base) header() byte {
	h := b.flags
	if b.inUse {
		h |= flagInUse
	}
	return h
}
