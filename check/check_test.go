package check_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/check"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/testutil"
)

func freeNode(t *testing.T, db *recstore.DB, id uint64) {
	t.Helper()
	require.NoError(t, db.Nodes().ForceUpdateRecord(record.NewNode(id)))
}

func TestRun_ConsistentGraph(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.BuildGraph(t, db, 5)

	report, err := check.New(db).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Consistent(), "%v", report.Inconsistencies())
	assert.Empty(t, report.Kinds())

	assert.Equal(t, uint64(5), report.Checked(record.KindNode))
	assert.Equal(t, uint64(4), report.Checked(record.KindRelationship))
	assert.Equal(t, uint64(6), report.Checked(record.KindProperty))
	assert.Equal(t, uint64(7), report.Checked(record.KindString))
	assert.Equal(t, uint64(2), report.Checked(record.KindArray))
	assert.Equal(t, uint64(1), report.Checked(record.KindRelationshipType))
	assert.Equal(t, uint64(1), report.Checked(record.KindPropertyIndex))
}

func TestRun_DanglingRelationshipEndpoints(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.BuildGraph(t, db, 4)
	freeNode(t, db, 2)

	report, err := check.New(db).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []record.Kind{record.KindRelationship}, report.Kinds())
	assert.Equal(t, []uint64{1, 2}, report.IDs(record.KindRelationship).ToSlice())

	items := report.Inconsistencies()
	require.Len(t, items, 2)
	assert.Equal(t, "Relationship record 1: second node 2 is not an in-use Node record", items[0].String())
	assert.Equal(t, "Relationship record 2: first node 2 is not an in-use Node record", items[1].String())
}

func TestRun_BrokenReferences(t *testing.T) {
	db := testutil.OpenDB(t)
	g := testutil.BuildGraph(t, db, 3)

	rel, err := db.Relationships().ForceGetRecord(0)
	require.NoError(t, err)
	rel.Type = 7
	require.NoError(t, db.Relationships().ForceUpdateRecord(rel))

	prop, err := db.Properties().ForceGetRecord(1)
	require.NoError(t, err)
	prop.KeyIndex = 3
	prop.Value = g.ArrayChain[1] // not a string block start
	prop.Type = record.PropertyArray
	require.NoError(t, db.Properties().ForceUpdateRecord(prop))

	block, err := db.Arrays().ForceGetRecord(g.ArrayChain[1])
	require.NoError(t, err)
	block.NextBlock = 99
	require.NoError(t, db.Arrays().ForceUpdateRecord(block))

	token, err := db.PropertyIndex().ForceGetRecord(0)
	require.NoError(t, err)
	token.KeyBlock = record.NoID
	require.NoError(t, db.PropertyIndex().ForceUpdateRecord(token))

	report, err := check.New(db).Run(context.Background())
	require.NoError(t, err)

	var messages []string
	for _, i := range report.Inconsistencies() {
		messages = append(messages, i.String())
	}
	assert.ElementsMatch(t, []string{
		"Relationship record 0: type 7 is beyond RelationshipType high id 0",
		"Property record 1: key 3 is beyond PropertyIndex high id 0",
		"Property record 1: array value 1 is not the start of a DynamicArray chain",
		"DynamicArray record 1: next block 99 is beyond DynamicArray high id 1",
		"PropertyIndex record 0: key name is unset",
	}, messages)
	assert.Equal(t, []record.Kind{
		record.KindRelationship,
		record.KindProperty,
		record.KindArray,
		record.KindPropertyIndex,
	}, report.Kinds())
}

func TestRepair(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.BuildGraph(t, db, 4)
	freeNode(t, db, 2)

	c := check.New(db)
	ctx := context.Background()

	report, err := c.Run(ctx)
	require.NoError(t, err)

	n, err := c.Repair(ctx, report)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []uint64{1, 2} {
		rel, err := db.Relationships().ForceGetRecord(id)
		require.NoError(t, err)
		assert.False(t, rel.InUse())
	}

	// Freed relationships leave dangling chain links behind.
	report, err = c.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, report.IDs(record.KindNode).ToSlice())
	assert.Equal(t, []uint64{0}, report.IDs(record.KindRelationship).ToSlice())

	for !report.Consistent() {
		_, err = c.Repair(ctx, report)
		require.NoError(t, err)
		report, err = c.Run(ctx)
		require.NoError(t, err)
	}

	n, err = c.Repair(ctx, report)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepair_ReadOnly(t *testing.T) {
	dir := t.TempDir()
	db := testutil.OpenDBAt(t, dir)
	testutil.BuildGraph(t, db, 3)
	freeNode(t, db, 1)
	require.NoError(t, db.Close())

	ro := testutil.OpenDBAt(t, dir, recstore.WithReadOnly())
	c := check.New(ro)
	report, err := c.Run(context.Background())
	require.NoError(t, err)
	require.False(t, report.Consistent())

	_, err = c.Repair(context.Background(), report)
	assert.ErrorIs(t, err, recstore.ErrReadOnly)
}

func TestRun_Canceled(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.BuildGraph(t, db, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := check.New(db).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_Logs(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.BuildGraph(t, db, 2)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	_, err := check.New(db, check.WithLogger(logger)).Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"msg":"apply done"`)
	assert.Contains(t, buf.String(), `"msg":"check done"`)
	assert.Contains(t, buf.String(), `"inconsistencies":0`)
}

func TestRun_ReportsCorruptBlockLength(t *testing.T) {
	dir := t.TempDir()
	db := testutil.OpenDBAt(t, dir)
	testutil.BuildGraph(t, db, 3)
	size := db.Strings().RecordSize()
	require.NoError(t, db.Close())

	// Overwrite the length field of string block 1.
	path := filepath.Join(dir, "propertystore.db.strings")
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], 1<<20)
	_, err = f.WriteAt(length[:], int64(size)+1)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	db = testutil.OpenDBAt(t, dir)
	report, err := check.New(db).Run(context.Background())
	require.NoError(t, err)

	items := report.Inconsistencies()
	require.Len(t, items, 1)
	assert.Equal(t, "DynamicString record 1: length field exceeds the block size", items[0].String())
	assert.Equal(t, uint64(5), report.Checked(record.KindString))
}
