package record

import "fmt"

// Kind identifies the record type held by a store.
type Kind uint8

const (
	KindNode Kind = iota
	KindRelationship
	KindProperty
	KindString
	KindArray
	KindRelationshipType
	KindPropertyIndex
)

// Kinds lists every kind in store order.
var Kinds = []Kind{
	KindNode,
	KindRelationship,
	KindProperty,
	KindString,
	KindArray,
	KindRelationshipType,
	KindPropertyIndex,
}

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "Node"
	case KindRelationship:
		return "Relationship"
	case KindProperty:
		return "Property"
	case KindString:
		return "DynamicString"
	case KindArray:
		return "DynamicArray"
	case KindRelationshipType:
		return "RelationshipType"
	case KindPropertyIndex:
		return "PropertyIndex"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// IsDynamic reports whether records of this kind are dynamic blocks.
func (k Kind) IsDynamic() bool {
	return k == KindString || k == KindArray
}
