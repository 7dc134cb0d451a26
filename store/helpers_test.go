package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore/record"
)

func openNodes(t *testing.T, optFns ...Option) *FileStore[*record.Node] {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nodestore.db"), record.NodeFormat{}, optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func node(id uint64, inUse bool) *record.Node {
	n := record.NewNode(id)
	n.SetInUse(inUse)
	n.NextRel = id + 100
	return n
}

// writeNodes force-writes ids 0..=high, leaving the ids in free unused.
func writeNodes(t *testing.T, s RecordStore[*record.Node], high uint64, free ...uint64) {
	t.Helper()
	freed := map[uint64]bool{}
	for _, id := range free {
		freed[id] = true
	}
	for id := uint64(0); id <= high; id++ {
		require.NoError(t, s.ForceUpdateRecord(node(id, !freed[id])))
	}
}

type visit struct {
	ids []uint64
}

func (v *visit) processor() *Processor {
	return &Processor{
		Name: "visit",
		Node: func(_ RecordStore[*record.Node], n *record.Node) error {
			v.ids = append(v.ids, n.ID())
			return nil
		},
	}
}

type sinkEvent struct {
	done     bool
	explicit bool
	value    uint64
}

type recordingSink struct {
	events []sinkEvent
}

func (r *recordingSink) Update(explicit bool, position uint64) {
	r.events = append(r.events, sinkEvent{explicit: explicit, value: position})
}

func (r *recordingSink) Done(total uint64) {
	r.events = append(r.events, sinkEvent{done: true, value: total})
}

func scanIDs[R record.Record](t *testing.T, s RecordStore[R], filters ...Predicate[R]) ([]uint64, []bool) {
	t.Helper()
	var ids []uint64
	var inUse []bool
	for rec, err := range Scan(s, filters...) {
		require.NoError(t, err)
		ids = append(ids, rec.ID())
		inUse = append(inUse, rec.InUse())
	}
	return ids, inUse
}
