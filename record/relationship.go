package record

// Relationship is the fixed record of a graph relationship. It is linked into the
// relationship chains of both of its endpoints.
type Relationship struct {
	Base
	FirstNode  uint64
	SecondNode uint64
	Type       uint32
	FirstPrev  uint64
	FirstNext  uint64
	SecondPrev uint64
	SecondNext uint64
	NextProp   uint64
}

// NewRelationship returns a not-in-use relationship record.
func NewRelationship(id uint64) *Relationship {
	return &Relationship{
		Base:       Base{id: id},
		FirstNode:  NoID,
		SecondNode: NoID,
		FirstPrev:  NoID,
		FirstNext:  NoID,
		SecondPrev: NoID,
		SecondNext: NoID,
		NextProp:   NoID,
	}
}

// Kind implements Record.
func (*Relationship) Kind() Kind { return KindRelationship }
