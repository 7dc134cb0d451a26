// Package record defines the fixed-layout records persisted by the graph store.
//
// # Kinds
//
// Seven record kinds share one addressing scheme (a dense, non-negative uint64 id):
//
//   - [Node]: entry point into a node's relationship and property chains
//   - [Relationship]: doubly linked into the chains of both endpoints
//   - [Property]: one link of a property chain
//   - [Dynamic]: a block of a string or array value (KindString / KindArray)
//   - [RelationshipType]: relationship type token
//   - [PropertyIndex]: property key token
//
// # Layout
//
// Every record starts with a flag byte (bit 0 = in use). The remaining bytes are
// fixed per kind and encoded little-endian by the kind's [Format]. Absent references
// are stored as [NoID].
//
// A slot that is not in use still decodes to a well-formed record; absence is
// expressed by InUse() == false, never by a nil value.
package record
