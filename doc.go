// Package recstore provides the fixed-size record stores of a graph database.
//
// A graph store directory holds seven store files, one per record kind:
//
//	nodestore.db               nodes
//	relationshipstore.db       relationships
//	propertystore.db           properties
//	propertystore.db.strings   dynamic string blocks
//	propertystore.db.arrays    dynamic array blocks
//	relationshiptypestore.db   relationship type tokens
//	propertystore.db.index     property key tokens
//
// # Quick Start
//
//	db, err := recstore.Open("./graph")
//	if err != nil { ... }
//	defer db.Close()
//
//	n := record.NewNode(0)
//	n.SetInUse(true)
//	_ = db.Nodes().UpdateRecord(n) // buffered, durable after Flush or Close
//
// # Processing
//
// Bulk work over stores is written as a store.Processor and applied per store,
// or to every store the processor supports:
//
//	p := &store.Processor{
//	    Name: "count-nodes",
//	    Node: func(_ store.RecordStore[*record.Node], n *record.Node) error {
//	        count++
//	        return nil
//	    },
//	}
//	err := store.ApplyFiltered(p, db.Nodes(), store.InUse[*record.Node])
//	err = db.ApplyAll(ctx, p, true)
//
// # Configuration
//
// Stores are configured with config.Params, the string key/value parameters
// of a graph store (read_only, use_memory_mapped_buffers, the per-store
// mapped_memory budgets, block sizes):
//
//	params, _ := config.Load("recstore.yaml")
//	db, err := recstore.Open("./graph", recstore.WithConfig(params))
//
// # Tools
//
// The backup package copies stores to a blobstore (local disk, MinIO, S3) and
// restores them; the check package validates references between records and
// repairs dangling ones.
package recstore
