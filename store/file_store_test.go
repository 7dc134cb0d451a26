package store

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recstore/internal/fs"
	"github.com/hupe1980/recstore/internal/resource"
	"github.com/hupe1980/recstore/record"
)

func TestFileStore_Descriptor(t *testing.T) {
	s := openNodes(t)
	assert.Equal(t, record.KindNode, s.Kind())
	assert.Equal(t, record.NodeSize, s.RecordSize())
	assert.Equal(t, record.NodeSize, s.RecordHeaderSize())
	assert.Equal(t, uint64(0), s.HighID())

	strs, err := Open(filepath.Join(t.TempDir(), "strings"), record.NewDynamicFormat(record.KindString, 60))
	require.NoError(t, err)
	defer strs.Close()
	assert.Equal(t, record.DynamicHeaderSize+60, strs.RecordSize())
	assert.Equal(t, record.DynamicHeaderSize, strs.RecordHeaderSize())
}

func TestFileStore_ForceGetNeverFailsInRange(t *testing.T) {
	s := openNodes(t)

	rec, err := s.ForceGetRecord(0)
	require.NoError(t, err)
	assert.False(t, rec.InUse())

	writeNodes(t, s, 4, 2)
	for id := uint64(0); id <= s.HighID(); id++ {
		rec, err := s.ForceGetRecord(id)
		require.NoError(t, err)
		assert.Equal(t, id, rec.ID())
		assert.Equal(t, id != 2, rec.InUse(), "id %d", id)
	}

	freed, err := s.ForceGetRecord(2)
	require.NoError(t, err)
	assert.Equal(t, record.NoID, freed.NextRel)

	beyond, err := s.ForceGetRecord(1000)
	require.NoError(t, err)
	assert.False(t, beyond.InUse())
	assert.Equal(t, uint64(1000), beyond.ID())
}

// writeCorruptStrings writes a two-block string store whose block 1 is in use
// with a length field larger than the 16-byte block.
func writeCorruptStrings(t *testing.T) string {
	t.Helper()
	f := record.NewDynamicFormat(record.KindString, 16)
	buf := make([]byte, 2*f.RecordSize())

	ok := record.NewDynamic(record.KindString, 0)
	ok.SetInUse(true)
	ok.StartBlock = true
	ok.Data = []byte("alice")
	require.NoError(t, f.Encode(ok, buf))

	bad := buf[f.RecordSize():]
	bad[0] = 1
	binary.LittleEndian.PutUint32(bad[1:], 255)
	binary.LittleEndian.PutUint64(bad[5:], record.NoID)

	path := filepath.Join(t.TempDir(), "propertystore.db.strings")
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

func TestFileStore_ForceGetServesCorruptSlot(t *testing.T) {
	s, err := Open(writeCorruptStrings(t), record.NewDynamicFormat(record.KindString, 16))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	d, err := s.ForceGetRecord(1)
	require.NoError(t, err)
	assert.True(t, d.InUse())
	assert.True(t, d.Overlong())
	assert.Len(t, d.Data, 16)

	_, err = s.GetRecord(1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, err, record.ErrCorruptRecord)

	ids, inUse := scanIDs(t, s)
	assert.Equal(t, []uint64{0, 1}, ids)
	assert.Equal(t, []bool{true, true}, inUse)
}

func TestFileStore_ForceGetRawKeepsFreedPayload(t *testing.T) {
	s := openNodes(t)
	writeNodes(t, s, 1, 1)

	raw, err := s.ForceGetRaw(1)
	require.NoError(t, err)
	assert.False(t, raw.InUse())
	assert.Equal(t, uint64(101), raw.NextRel)

	norm, err := s.ForceGetRecord(1)
	require.NoError(t, err)
	assert.Equal(t, record.NoID, norm.NextRel)
}

func TestFileStore_GetRecord(t *testing.T) {
	s := openNodes(t)
	writeNodes(t, s, 3, 1)

	n, err := s.GetRecord(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(102), n.NextRel)

	_, err = s.GetRecord(1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	var nf *RecordNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, uint64(1), nf.ID)
	assert.Equal(t, record.KindNode, nf.Kind)
	assert.Equal(t, "Node record 1 not found", err.Error())

	_, err = s.GetRecord(4)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = s.GetRecord(2)
	require.NoError(t, err)
	hits, misses := s.CacheStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestFileStore_UpdateRecordIsBuffered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodestore.db")
	s, err := Open(path, record.NodeFormat{})
	require.NoError(t, err)

	require.NoError(t, s.UpdateRecord(node(7, true)))
	require.NoError(t, s.UpdateRecord(node(3, true)))
	assert.Equal(t, uint64(7), s.HighID())
	assert.Equal(t, 2, s.Pending())

	got, err := s.GetRecord(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(107), got.NextRel)

	// Forced reads see the file, not the buffer.
	forced, err := s.ForceGetRecord(7)
	require.NoError(t, err)
	assert.False(t, forced.InUse())

	require.NoError(t, s.Flush())
	assert.Zero(t, s.Pending())
	forced, err = s.ForceGetRecord(7)
	require.NoError(t, err)
	assert.True(t, forced.InUse())

	deleted := node(3, false)
	require.NoError(t, s.UpdateRecord(deleted))
	_, err = s.GetRecord(3)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	require.NoError(t, s.Close())

	s, err = Open(path, record.NodeFormat{})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(7), s.HighID())
	_, err = s.GetRecord(3)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	got, err = s.GetRecord(7)
	require.NoError(t, err)
	assert.True(t, got.InUse())
}

func TestFileStore_DirtyRecordSurvivesCacheEviction(t *testing.T) {
	s := openNodes(t, WithCacheBytes(0))

	require.NoError(t, s.UpdateRecord(node(5, true)))
	got, err := s.GetRecord(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(105), got.NextRel)
}

// pausingFS hands out files whose next ReadAt, once armed, blocks after
// reading until resume is closed.
type pausingFS struct {
	fs.FileSystem
	file *pausingFile
}

func (p *pausingFS) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	f, err := p.FileSystem.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	p.file = &pausingFile{File: f, read: make(chan struct{}), resume: make(chan struct{})}
	return p.file, nil
}

type pausingFile struct {
	fs.File
	armed  atomic.Bool
	read   chan struct{}
	resume chan struct{}
}

func (f *pausingFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := f.File.ReadAt(p, off)
	if f.armed.CompareAndSwap(true, false) {
		close(f.read)
		<-f.resume
	}
	return n, err
}

func TestFileStore_LoadRacingFlushedWriteIsNotCached(t *testing.T) {
	pfs := &pausingFS{FileSystem: fs.Default}
	s := openNodes(t, WithFileSystem(pfs))
	writeNodes(t, s, 0)

	pfs.file.armed.Store(true)
	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		_, _ = s.GetRecord(0)
	}()
	<-pfs.file.read

	// The loader holds the old bytes while a newer write is buffered and flushed.
	n := node(0, true)
	n.NextRel = 7
	require.NoError(t, s.UpdateRecord(n))
	require.NoError(t, s.Flush())
	close(pfs.file.resume)
	<-loaded

	got, err := s.GetRecord(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.NextRel)
}

func TestFileStore_ForceUpdateDropsCachedCopy(t *testing.T) {
	s := openNodes(t)
	writeNodes(t, s, 2)

	_, err := s.GetRecord(1)
	require.NoError(t, err)

	require.NoError(t, s.ForceUpdateRecord(node(1, false)))
	_, err = s.GetRecord(1)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Zero(t, s.Pending())
}

func TestFileStore_RejectsInvalidWrites(t *testing.T) {
	s := openNodes(t)

	assert.ErrorIs(t, s.UpdateRecord(node(record.NoID, true)), ErrInvalidID)
	assert.ErrorIs(t, s.ForceUpdateRecord(node(record.NoID, true)), ErrInvalidID)

	strs, err := Open(filepath.Join(t.TempDir(), "strings"), record.NewDynamicFormat(record.KindString, 4))
	require.NoError(t, err)
	defer strs.Close()

	arr := record.NewDynamic(record.KindArray, 0)
	assert.ErrorIs(t, strs.UpdateRecord(arr), record.ErrKindMismatch)

	long := record.NewDynamic(record.KindString, 0)
	long.SetInUse(true)
	long.Data = []byte("too long")
	assert.Error(t, strs.UpdateRecord(long))
	assert.Zero(t, strs.Pending())
}

func TestFileStore_Close(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nodestore.db"), record.NodeFormat{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.GetRecord(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ForceGetRecord(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ForceGetRaw(0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.UpdateRecord(node(0, true)), ErrClosed)
	assert.ErrorIs(t, s.ForceUpdateRecord(node(0, true)), ErrClosed)
	assert.ErrorIs(t, s.Flush(), ErrClosed)
}

func TestFileStore_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodestore.db")

	_, err := Open(path, record.NodeFormat{}, WithReadOnly(true))
	assert.ErrorIs(t, err, os.ErrNotExist)

	s, err := Open(path, record.NodeFormat{})
	require.NoError(t, err)
	writeNodes(t, s, 5, 3)
	require.NoError(t, s.Close())

	for _, mapped := range []bool{false, true} {
		ro, err := Open(path, record.NodeFormat{}, WithReadOnly(true), WithMemoryMapped(mapped))
		require.NoError(t, err)

		assert.True(t, ro.ReadOnly())
		assert.Equal(t, uint64(5), ro.HighID())
		assert.ErrorIs(t, ro.UpdateRecord(node(1, true)), ErrReadOnly)
		assert.ErrorIs(t, ro.ForceUpdateRecord(node(1, true)), ErrReadOnly)
		assert.NoError(t, ro.Flush())

		ids, inUse := scanIDs[*record.Node](t, ro)
		assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5}, ids)
		assert.Equal(t, []bool{true, true, true, false, true, true}, inUse)

		n, err := ro.GetRecord(4)
		require.NoError(t, err)
		assert.Equal(t, uint64(104), n.NextRel)

		beyond, err := ro.ForceGetRecord(99)
		require.NoError(t, err)
		assert.False(t, beyond.InUse())

		require.NoError(t, ro.Close())
	}
}

func TestFileStore_RebuildHighID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodestore.db")
	s, err := Open(path, record.NodeFormat{})
	require.NoError(t, err)
	writeNodes(t, s, 6, 5, 6)
	require.NoError(t, s.Close())

	s, err = Open(path, record.NodeFormat{})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), s.HighID())
	require.NoError(t, s.Close())

	s, err = Open(path, record.NodeFormat{}, WithRebuildHighID(true))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(4), s.HighID())
}

func TestFileStore_PartialTrailingRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nodestore.db")
	s, err := Open(path, record.NodeFormat{})
	require.NoError(t, err)
	writeNodes(t, s, 1)
	require.NoError(t, s.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s, err = Open(path, record.NodeFormat{})
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, uint64(1), s.HighID())

	torn, err := s.ForceGetRecord(2)
	require.NoError(t, err)
	assert.False(t, torn.InUse())
}

func TestFileStore_WriteFaults(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("nodestore", fs.Fault{FailAfterBytes: 2 * record.NodeSize})

	s, err := Open(filepath.Join(t.TempDir(), "nodestore.db"), record.NodeFormat{}, WithFileSystem(faulty))
	require.NoError(t, err)

	for id := uint64(0); id < 4; id++ {
		require.NoError(t, s.UpdateRecord(node(id, true)))
	}
	err = s.Flush()
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, 2, s.Pending())

	err = s.Close()
	assert.ErrorIs(t, err, fs.ErrInjected)
	require.NoError(t, s.Close())
}

func TestFileStore_SyncFault(t *testing.T) {
	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("nodestore", fs.Fault{FailOnSync: true})

	s, err := Open(filepath.Join(t.TempDir(), "nodestore.db"), record.NodeFormat{}, WithFileSystem(faulty))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.UpdateRecord(node(0, true)))
	assert.ErrorIs(t, s.Flush(), fs.ErrInjected)
}

func TestFileStore_CacheChargesResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	s := openNodes(t, WithResourceController(rc))
	writeNodes(t, s, 3)

	for id := uint64(0); id <= 3; id++ {
		_, err := s.GetRecord(id)
		require.NoError(t, err)
	}
	assert.Equal(t, int64(4*(record.NodeSize+cacheEntryOverhead)), rc.MemoryUsage())

	require.NoError(t, s.Close())
	assert.Zero(t, rc.MemoryUsage())
}

func TestFileStore_ConcurrentReads(t *testing.T) {
	s := openNodes(t)
	writeNodes(t, s, 63)

	var wg sync.WaitGroup
	var failures atomic.Int64
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := uint64(0); id <= 63; id++ {
				n, err := s.GetRecord(id)
				if err != nil || n.NextRel != id+100 {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, failures.Load())
}

type countingMetrics struct {
	reads, forcedReads, writes, forcedWrites, hits, misses, errors int
}

func (c *countingMetrics) OnRead(_ record.Kind, forced bool, _ time.Duration, err error) {
	if forced {
		c.forcedReads++
	} else {
		c.reads++
	}
	if err != nil {
		c.errors++
	}
}

func (c *countingMetrics) OnWrite(_ record.Kind, forced bool, _ time.Duration, err error) {
	if forced {
		c.forcedWrites++
	} else {
		c.writes++
	}
	if err != nil {
		c.errors++
	}
}

func (c *countingMetrics) OnCacheHit(record.Kind)  { c.hits++ }
func (c *countingMetrics) OnCacheMiss(record.Kind) { c.misses++ }

func TestFileStore_Metrics(t *testing.T) {
	m := &countingMetrics{}
	s := openNodes(t, WithMetrics(m))

	require.NoError(t, s.ForceUpdateRecord(node(0, true)))
	require.NoError(t, s.UpdateRecord(node(1, true)))
	_, err := s.GetRecord(0)
	require.NoError(t, err)
	_, err = s.GetRecord(0)
	require.NoError(t, err)
	_, err = s.ForceGetRecord(1)
	require.NoError(t, err)
	_, err = s.GetRecord(9)
	require.Error(t, err)

	assert.Equal(t, 1, m.forcedWrites)
	assert.Equal(t, 1, m.writes)
	// Id 9 is beyond the high id and never reaches the cache.
	assert.Equal(t, 2, m.reads)
	assert.Equal(t, 1, m.forcedReads)
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)
	assert.Zero(t, m.errors)
}
