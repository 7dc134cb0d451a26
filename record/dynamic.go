package record

// Dynamic is one block of a string or array value. Blocks of a value form a
// singly linked chain starting at the block flagged StartBlock.
type Dynamic struct {
	Base
	kind       Kind
	StartBlock bool
	NextBlock  uint64
	Data       []byte

	overlong bool
}

// NewDynamic returns a not-in-use block for a string or array store.
func NewDynamic(kind Kind, id uint64) *Dynamic {
	return &Dynamic{Base: Base{id: id}, kind: kind, NextBlock: NoID}
}

// Kind implements Record. It is KindString or KindArray.
func (d *Dynamic) Kind() Kind { return d.kind }

// Overlong reports whether the block was decoded from a slot whose length
// field exceeds the block capacity. Only raw decoding yields such blocks; Data
// then holds the whole block.
func (d *Dynamic) Overlong() bool { return d.overlong }
