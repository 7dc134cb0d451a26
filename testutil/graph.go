package testutil

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/record"
)

// OpenDB opens a DB in a fresh temporary directory and closes it at cleanup.
func OpenDB(tb testing.TB, opts ...recstore.Option) *recstore.DB {
	tb.Helper()
	return OpenDBAt(tb, tb.TempDir(), opts...)
}

// OpenDBAt opens the DB in dir and closes it at cleanup.
func OpenDBAt(tb testing.TB, dir string, opts ...recstore.Option) *recstore.DB {
	tb.Helper()
	db, err := recstore.Open(dir, opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

// Graph describes the records written by BuildGraph.
type Graph struct {
	Nodes         int
	Relationships int
	// NameBlocks are the string blocks of the node names, by node id.
	NameBlocks []uint64
	// TypeNameBlock and KeyNameBlock hold the token names.
	TypeNameBlock uint64
	KeyNameBlock  uint64
	// ArrayChain is a two-block array value attached to node 0.
	ArrayChain [2]uint64
	// ArrayProperty is the property of node 0 pointing at ArrayChain.
	ArrayProperty uint64
}

// BuildGraph force-writes a consistent path graph of n nodes (n >= 1).
//
// Node i has property i ("name" = "node-i", a string block) and relationships
// are i -> i+1 of type 0 ("KNOWS"). Node 0 additionally has an array property
// stored in a two-block chain. Every reference points at an in-use record.
func BuildGraph(tb testing.TB, db *recstore.DB, n int) Graph {
	tb.Helper()
	require.GreaterOrEqual(tb, n, 1)

	g := Graph{Nodes: n, Relationships: n - 1}
	nodes, rels, props := db.Nodes(), db.Relationships(), db.Properties()
	strs, arrays := db.Strings(), db.Arrays()

	str := func(id uint64, s string) {
		tb.Helper()
		d := record.NewDynamic(record.KindString, id)
		d.SetInUse(true)
		d.StartBlock = true
		d.Data = []byte(s)
		require.NoError(tb, strs.ForceUpdateRecord(d))
	}

	for i := range n {
		id := uint64(i)
		g.NameBlocks = append(g.NameBlocks, id)
		str(id, fmt.Sprintf("node-%d", i))

		p := record.NewProperty(id)
		p.SetInUse(true)
		p.Type = record.PropertyString
		p.KeyIndex = 0
		p.Value = id
		require.NoError(tb, props.ForceUpdateRecord(p))

		nd := record.NewNode(id)
		nd.SetInUse(true)
		nd.NextProp = id
		switch {
		case i < n-1:
			nd.NextRel = id
		case i > 0:
			nd.NextRel = id - 1
		}
		require.NoError(tb, nodes.ForceUpdateRecord(nd))
	}

	for j := range n - 1 {
		id := uint64(j)
		r := record.NewRelationship(id)
		r.SetInUse(true)
		r.FirstNode = id
		r.SecondNode = id + 1
		r.Type = 0
		if j > 0 {
			r.FirstPrev = id - 1
		}
		if j+1 < n-1 {
			r.SecondNext = id + 1
		}
		require.NoError(tb, rels.ForceUpdateRecord(r))
	}

	// Array value on node 0, chained before its name property.
	g.ArrayChain = [2]uint64{0, 1}
	for i, id := range g.ArrayChain {
		d := record.NewDynamic(record.KindArray, id)
		d.SetInUse(true)
		d.StartBlock = i == 0
		d.Data = []byte{byte(i), 1, 2, 3}
		if i == 0 {
			d.NextBlock = g.ArrayChain[1]
		}
		require.NoError(tb, arrays.ForceUpdateRecord(d))
	}
	g.ArrayProperty = uint64(n)
	ap := record.NewProperty(g.ArrayProperty)
	ap.SetInUse(true)
	ap.Type = record.PropertyArray
	ap.KeyIndex = 0
	ap.Value = g.ArrayChain[0]
	ap.NextProp = 0
	require.NoError(tb, props.ForceUpdateRecord(ap))

	nameProp, err := props.ForceGetRecord(0)
	require.NoError(tb, err)
	nameProp.PrevProp = g.ArrayProperty
	require.NoError(tb, props.ForceUpdateRecord(nameProp))

	node0, err := nodes.ForceGetRecord(0)
	require.NoError(tb, err)
	node0.NextProp = g.ArrayProperty
	require.NoError(tb, nodes.ForceUpdateRecord(node0))

	g.TypeNameBlock = uint64(n)
	str(g.TypeNameBlock, "KNOWS")
	rt := record.NewRelationshipType(0)
	rt.SetInUse(true)
	rt.NameBlock = g.TypeNameBlock
	require.NoError(tb, db.RelationshipTypes().ForceUpdateRecord(rt))

	g.KeyNameBlock = uint64(n + 1)
	str(g.KeyNameBlock, "name")
	key := record.NewPropertyIndex(0)
	key.SetInUse(true)
	key.PropCount = uint32(n + 1)
	key.KeyBlock = g.KeyNameBlock
	require.NoError(tb, db.PropertyIndex().ForceUpdateRecord(key))

	return g
}
