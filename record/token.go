package record

// RelationshipType is a relationship type token. Its name is stored in a
// dynamic block chain starting at NameBlock.
type RelationshipType struct {
	Base
	NameBlock uint64
}

// NewRelationshipType returns a not-in-use relationship type record.
func NewRelationshipType(id uint64) *RelationshipType {
	return &RelationshipType{Base: Base{id: id}, NameBlock: NoID}
}

// Kind implements Record.
func (*RelationshipType) Kind() Kind { return KindRelationshipType }

// PropertyIndex is a property key token.
type PropertyIndex struct {
	Base
	PropCount uint32
	KeyBlock  uint64
}

// NewPropertyIndex returns a not-in-use property key record.
func NewPropertyIndex(id uint64) *PropertyIndex {
	return &PropertyIndex{Base: Base{id: id}, KeyBlock: NoID}
}

// Kind implements Record.
func (*PropertyIndex) Kind() Kind { return KindPropertyIndex }
