// Package testutil provides testing utilities for recstore.
//
// This package is intended for use in tests only.
//
// # Graph Fixture
//
//	db := testutil.OpenDB(t)
//	g := testutil.BuildGraph(t, db, 10)
//	// g.Nodes node records, each with a string property "name",
//	// linked in a path by g.Nodes-1 KNOWS relationships.
//
// # Recording
//
//	rec := &testutil.Recorder{}
//	err := db.ApplyAll(ctx, rec.Processor(), true)
//	rec.IDs(record.KindNode)
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	data := rng.Bytes(64)
package testutil
