package record

// Node is the fixed record of a graph node.
type Node struct {
	Base
	NextRel  uint64
	NextProp uint64
}

// NewNode returns a not-in-use node record with empty chains.
func NewNode(id uint64) *Node {
	return &Node{Base: Base{id: id}, NextRel: NoID, NextProp: NoID}
}

// Kind implements Record.
func (*Node) Kind() Kind { return KindNode }
