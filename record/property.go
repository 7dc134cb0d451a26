package record

// PropertyType is the stored type of a property value.
type PropertyType uint32

const (
	PropertyNone PropertyType = iota
	PropertyBool
	PropertyByte
	PropertyShort
	PropertyChar
	PropertyInt
	PropertyLong
	PropertyFloat
	PropertyDouble
	// PropertyString and PropertyArray keep the first dynamic block id in Value.
	PropertyString
	PropertyArray
)

// Property is one link of a node's or relationship's property chain.
type Property struct {
	Base
	Type     PropertyType
	KeyIndex uint32
	// Value holds the inlined value or, for strings and arrays, the first block id.
	Value    uint64
	PrevProp uint64
	NextProp uint64
}

// NewProperty returns a not-in-use property record.
func NewProperty(id uint64) *Property {
	return &Property{Base: Base{id: id}, PrevProp: NoID, NextProp: NoID}
}

// Kind implements Record.
func (*Property) Kind() Kind { return KindProperty }

// IsDynamic reports whether the value lives in a dynamic store.
func (p *Property) IsDynamic() bool {
	return p.Type == PropertyString || p.Type == PropertyArray
}
