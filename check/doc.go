// Package check validates the references between the records of a graph
// store and repairs what it finds.
//
// A Checker applies one store.Processor to every in-use record of a
// recstore.DB. It reports, per record:
//
//   - relationships whose endpoints are not in-use nodes
//   - relationships whose type is not an in-use relationship type
//   - node, relationship and property chain links to records not in use
//   - properties whose key or dynamic value block does not exist
//   - dynamic blocks whose next block is beyond the high id or not in use
//   - token names whose first string block does not exist
//
// Repair frees the reported records. Freeing can leave new dangling
// references, so callers repeat Run until the report is consistent.
package check
