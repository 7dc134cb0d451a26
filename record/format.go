package record

import (
	"encoding/binary"
	"fmt"
)

const (
	// NodeSize is the on-disk size of a node record.
	NodeSize = 1 + 8 + 8
	// RelationshipSize is the on-disk size of a relationship record.
	RelationshipSize = 1 + 8 + 8 + 4 + 8*4 + 8
	// PropertySize is the on-disk size of a property record.
	PropertySize = 1 + 4 + 4 + 8 + 8 + 8
	// RelationshipTypeSize is the on-disk size of a relationship type record.
	RelationshipTypeSize = 1 + 8
	// PropertyIndexSize is the on-disk size of a property key record.
	PropertyIndexSize = 1 + 4 + 8
	// DynamicHeaderSize is the size of the header preceding a dynamic block's data.
	DynamicHeaderSize = 1 + 4 + 8
	// DefaultBlockSize is the data size of a dynamic block when none is configured.
	DefaultBlockSize = 120
)

// Format encodes and decodes the fixed layout of one record kind.
//
// Decode with raw=false normalises the slot: a slot that is not in use decodes
// to New(id). Decode with raw=true returns the slot exactly as stored.
type Format[R Record] interface {
	Kind() Kind
	RecordSize() int
	HeaderSize() int
	New(id uint64) R
	Encode(rec R, buf []byte) error
	Decode(id uint64, buf []byte, raw bool) (R, error)
}

var le = binary.LittleEndian

func checkBuf(buf []byte, size int) error {
	if len(buf) < size {
		return fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(buf), size)
	}
	return nil
}

func decodeBase(id uint64, h byte, raw bool) Base {
	b := Base{id: id, inUse: h&flagInUse != 0}
	if raw {
		b.flags = h &^ (flagInUse | flagStartBlock)
	}
	return b
}

// NodeFormat is the Format of node records.
type NodeFormat struct{}

func (NodeFormat) Kind() Kind {
	return KindNode
}

func (NodeFormat) RecordSize() int {
	return NodeSize
}

func (NodeFormat) HeaderSize() int {
	return NodeSize
}

func (NodeFormat) New(id uint64) *Node {
	return NewNode(id)
}

func (NodeFormat) Encode(n *Node, buf []byte) error {
	if err := checkBuf(buf, NodeSize); err != nil {
		return err
	}
	buf[0] = n.header()
	le.PutUint64(buf[1:], n.NextRel)
	le.PutUint64(buf[9:], n.NextProp)
	return nil
}

func (NodeFormat) Decode(id uint64, buf []byte, raw bool) (*Node, error) {
	if err := checkBuf(buf, NodeSize); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewNode(id), nil
	}
	return &Node{
		Base:     b,
		NextRel:  le.Uint64(buf[1:]),
		NextProp: le.Uint64(buf[9:]),
	}, nil
}

// RelationshipFormat is the Format of relationship records.
type RelationshipFormat struct{}

func (RelationshipFormat) Kind() Kind {
	return KindRelationship
}

func (RelationshipFormat) RecordSize() int {
	return RelationshipSize
}

func (RelationshipFormat) HeaderSize() int {
	return RelationshipSize
}

func (RelationshipFormat) New(id uint64) *Relationship {
	return NewRelationship(id)
}

func (RelationshipFormat) Encode(r *Relationship, buf []byte) error {
	if err := checkBuf(buf, RelationshipSize); err != nil {
		return err
	}
	buf[0] = r.header()
	le.PutUint64(buf[1:], r.FirstNode)
	le.PutUint64(buf[9:], r.SecondNode)
	le.PutUint32(buf[17:], r.Type)
	le.PutUint64(buf[21:], r.FirstPrev)
	le.PutUint64(buf[29:], r.FirstNext)
	le.PutUint64(buf[37:], r.SecondPrev)
	le.PutUint64(buf[45:], r.SecondNext)
	le.PutUint64(buf[53:], r.NextProp)
	return nil
}

func (RelationshipFormat) Decode(id uint64, buf []byte, raw bool) (*Relationship, error) {
	if err := checkBuf(buf, RelationshipSize); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewRelationship(id), nil
	}
	return &Relationship{
		Base:       b,
		FirstNode:  le.Uint64(buf[1:]),
		SecondNode: le.Uint64(buf[9:]),
		Type:       le.Uint32(buf[17:]),
		FirstPrev:  le.Uint64(buf[21:]),
		FirstNext:  le.Uint64(buf[29:]),
		SecondPrev: le.Uint64(buf[37:]),
		SecondNext: le.Uint64(buf[45:]),
		NextProp:   le.Uint64(buf[53:]),
	}, nil
}

// PropertyFormat is the Format of property records.
type PropertyFormat struct{}

func (PropertyFormat) Kind() Kind {
	return KindProperty
}

func (PropertyFormat) RecordSize() int {
	return PropertySize
}

func (PropertyFormat) HeaderSize() int {
	return PropertySize
}

func (PropertyFormat) New(id uint64) *Property {
	return NewProperty(id)
}

func (PropertyFormat) Encode(p *Property, buf []byte) error {
	if err := checkBuf(buf, PropertySize); err != nil {
		return err
	}
	buf[0] = p.header()
	le.PutUint32(buf[1:], uint32(p.Type))
	le.PutUint32(buf[5:], p.KeyIndex)
	le.PutUint64(buf[9:], p.Value)
	le.PutUint64(buf[17:], p.PrevProp)
	le.PutUint64(buf[25:], p.NextProp)
	return nil
}

func (PropertyFormat) Decode(id uint64, buf []byte, raw bool) (*Property, error) {
	if err := checkBuf(buf, PropertySize); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewProperty(id), nil
	}
	return &Property{
		Base:     b,
		Type:     PropertyType(le.Uint32(buf[1:])),
		KeyIndex: le.Uint32(buf[5:]),
		Value:    le.Uint64(buf[9:]),
		PrevProp: le.Uint64(buf[17:]),
		NextProp: le.Uint64(buf[25:]),
	}, nil
}

// RelationshipTypeFormat is the Format of relationship type records.
type RelationshipTypeFormat struct{}

func (RelationshipTypeFormat) Kind() Kind {
	return KindRelationshipType
}

func (RelationshipTypeFormat) RecordSize() int {
	return RelationshipTypeSize
}

func (RelationshipTypeFormat) HeaderSize() int {
	return RelationshipTypeSize
}

func (RelationshipTypeFormat) New(id uint64) *RelationshipType {
	return NewRelationshipType(id)
}

func (RelationshipTypeFormat) Encode(t *RelationshipType, buf []byte) error {
	if err := checkBuf(buf, RelationshipTypeSize); err != nil {
		return err
	}
	buf[0] = t.header()
	le.PutUint64(buf[1:], t.NameBlock)
	return nil
}

func (RelationshipTypeFormat) Decode(id uint64, buf []byte, raw bool) (*RelationshipType, error) {
	if err := checkBuf(buf, RelationshipTypeSize); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewRelationshipType(id), nil
	}
	return &RelationshipType{Base: b, NameBlock: le.Uint64(buf[1:])}, nil
}

// PropertyIndexFormat is the Format of property key records.
type PropertyIndexFormat struct{}

func (PropertyIndexFormat) Kind() Kind {
	return KindPropertyIndex
}

func (PropertyIndexFormat) RecordSize() int {
	return PropertyIndexSize
}

func (PropertyIndexFormat) HeaderSize() int {
	return PropertyIndexSize
}

func (PropertyIndexFormat) New(id uint64) *PropertyIndex {
	return NewPropertyIndex(id)
}

func (PropertyIndexFormat) Encode(p *PropertyIndex, buf []byte) error {
	if err := checkBuf(buf, PropertyIndexSize); err != nil {
		return err
	}
	buf[0] = p.header()
	le.PutUint32(buf[1:], p.PropCount)
	le.PutUint64(buf[5:], p.KeyBlock)
	return nil
}

func (PropertyIndexFormat) Decode(id uint64, buf []byte, raw bool) (*PropertyIndex, error) {
	if err := checkBuf(buf, PropertyIndexSize); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewPropertyIndex(id), nil
	}
	return &PropertyIndex{
		Base:      b,
		PropCount: le.Uint32(buf[1:]),
		KeyBlock:  le.Uint64(buf[5:]),
	}, nil
}

// DynamicFormat is the Format of string and array blocks.
type DynamicFormat struct {
	kind      Kind
	blockSize int
}

// NewDynamicFormat returns the block format of a string or array store.
// A blockSize <= 0 selects DefaultBlockSize.
func NewDynamicFormat(kind Kind, blockSize int) DynamicFormat {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return DynamicFormat{kind: kind, blockSize: blockSize}
}

func (f DynamicFormat) Kind() Kind {
	return f.kind
}

func (f DynamicFormat) RecordSize() int {
	return DynamicHeaderSize + f.blockSize
}

func (f DynamicFormat) HeaderSize() int {
	return DynamicHeaderSize
}

func (f DynamicFormat) New(id uint64) *Dynamic {
	return NewDynamic(f.kind, id)
}

// BlockSize returns the data capacity of one block.
func (f DynamicFormat) BlockSize() int {
	return f.blockSize
}

func (f DynamicFormat) Encode(d *Dynamic, buf []byte) error {
	if d.kind != f.kind {
		return fmt.Errorf("%w: %s block in %s store", ErrKindMismatch, d.kind, f.kind)
	}
	if err := checkBuf(buf, f.RecordSize()); err != nil {
		return err
	}
	if len(d.Data) > f.blockSize {
		return fmt.Errorf("record: block %d holds %d bytes, capacity is %d", d.id, len(d.Data), f.blockSize)
	}
	h := d.header()
	if d.StartBlock {
		h |= flagStartBlock
	}
	buf[0] = h
	le.PutUint32(buf[1:], uint32(len(d.Data)))
	le.PutUint64(buf[5:], d.NextBlock)
	n := copy(buf[DynamicHeaderSize:], d.Data)
	clear(buf[DynamicHeaderSize+n : f.RecordSize()])
	return nil
}

func (f DynamicFormat) Decode(id uint64, buf []byte, raw bool) (*Dynamic, error) {
	if err := checkBuf(buf, f.RecordSize()); err != nil {
		return nil, err
	}
	b := decodeBase(id, buf[0], raw)
	if !raw && !b.inUse {
		return NewDynamic(f.kind, id), nil
	}
	stored := int64(le.Uint32(buf[1:]))
	overlong := stored > int64(f.blockSize)
	length := int(min(stored, int64(f.blockSize)))
	if raw {
		length = f.blockSize
	} else if overlong {
		return nil, fmt.Errorf("%w: block %d length %d exceeds %d", ErrCorruptRecord, id, stored, f.blockSize)
	}
	block := buf[DynamicHeaderSize:f.RecordSize()]
	data := make([]byte, length)
	copy(data, block[:length])
	return &Dynamic{
		Base:       b,
		kind:       f.kind,
		StartBlock: buf[0]&flagStartBlock != 0,
		NextBlock:  le.Uint64(buf[5:]),
		Data:       data,
		overlong:   overlong,
	}, nil
}
