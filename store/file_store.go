package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/btree"
	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/recstore/internal/cache"
	"github.com/hupe1980/recstore/internal/fs"
	"github.com/hupe1980/recstore/internal/mmap"
	"github.com/hupe1980/recstore/record"
)

// cacheEntryOverhead approximates the decoded size of a record beyond its
// on-disk bytes.
const cacheEntryOverhead = 64

// FileStore is a RecordStore backed by a single file of fixed-size records.
// Record id i occupies bytes [i*RecordSize, (i+1)*RecordSize).
//
// Records returned by GetRecord are shared with the cache. Callers that modify
// one must pass it to UpdateRecord.
//
// Forced and cached access are not coherent: a forced read does not see
// buffered writes that have not been flushed. ForceUpdateRecord drops the
// cached copy of the record, but a buffered write of the same id still wins at
// the next Flush.
type FileStore[R record.Record] struct {
	path     string
	format   record.Format[R]
	file     fs.File
	mapping  *mmap.Mapping
	readOnly bool

	highID atomic.Uint64

	cache *cache.Sharded[R]
	loads singleflight.Group

	mu    sync.Mutex
	dirty *btree.BTreeG[R]
	// writes counts cached and forced writes; guarded by mu.
	writes uint64

	logger  *slog.Logger
	metrics MetricsObserver

	closed atomic.Bool
}

// Open opens the store file at path, creating it unless the store is
// read-only.
func Open[R record.Record](path string, format record.Format[R], optFns ...Option) (*FileStore[R], error) {
	opts := options{
		fs:         fs.Default,
		cacheBytes: DefaultCacheBytes,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	f, err := fs.OpenRecordFile(opts.fs, path, opts.readOnly)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}

	recordSize := int64(format.RecordSize())
	s := &FileStore[R]{
		path:     path,
		format:   format,
		file:     f,
		readOnly: opts.readOnly,
		cache:    cache.NewSharded[R](opts.cacheBytes, recordSize+cacheEntryOverhead, opts.rc),
		dirty: btree.NewG(32, func(a, b R) bool {
			return a.ID() < b.ID()
		}),
		logger:  opts.logger,
		metrics: opts.metrics,
	}

	size := fi.Size()
	if n := size / recordSize; n > 0 {
		s.highID.Store(uint64(n - 1))
	}
	if size%recordSize != 0 && s.logger != nil {
		s.logger.Warn("store file ends in a partial record", "path", path, "size", size, "record_size", recordSize)
	}

	if opts.readOnly && opts.memoryMapped {
		m, err := mmap.Open(path)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("store: map %s: %w", path, err)
		}
		// Forced reads are dominated by full scans.
		_ = m.Advise(mmap.AccessSequential)
		s.mapping = m
	}

	if opts.rebuildHighID {
		if err := s.rebuildHighID(); err != nil {
			_ = s.release()
			return nil, err
		}
	}

	if s.logger != nil {
		s.logger.Info("store opened",
			"path", path,
			"kind", format.Kind().String(),
			"high_id", s.highID.Load(),
			"read_only", s.readOnly,
			"mapped", s.mapping != nil,
		)
	}
	return s, nil
}

// Kind implements Descriptor.
func (s *FileStore[R]) Kind() record.Kind { return s.format.Kind() }

// HighID implements Descriptor.
func (s *FileStore[R]) HighID() uint64 { return s.highID.Load() }

// RecordSize implements Descriptor.
func (s *FileStore[R]) RecordSize() int { return s.format.RecordSize() }

// RecordHeaderSize implements Descriptor.
func (s *FileStore[R]) RecordHeaderSize() int { return s.format.HeaderSize() }

// Path returns the store file path.
func (s *FileStore[R]) Path() string { return s.path }

// Format returns the record format of the store.
func (s *FileStore[R]) Format() record.Format[R] { return s.format }

// ReadOnly reports whether the store rejects writes.
func (s *FileStore[R]) ReadOnly() bool { return s.readOnly }

// GetRecord implements RecordStore.
func (s *FileStore[R]) GetRecord(id uint64) (R, error) {
	var zero R
	if s.closed.Load() {
		return zero, ErrClosed
	}
	if id > s.highID.Load() {
		return zero, s.notFound(id, nil)
	}

	start := time.Now()
	rec, err := s.getCached(id)
	s.observeRead(false, start, err)
	return rec, err
}

func (s *FileStore[R]) getCached(id uint64) (R, error) {
	var zero R

	if rec, ok := s.cache.Get(id); ok {
		if s.metrics != nil {
			s.metrics.OnCacheHit(s.Kind())
		}
		if !rec.InUse() {
			return zero, s.notFound(id, nil)
		}
		return rec, nil
	}
	if s.metrics != nil {
		s.metrics.OnCacheMiss(s.Kind())
	}

	v, err, _ := s.loads.Do(strconv.FormatUint(id, 10), func() (any, error) {
		s.mu.Lock()
		pending, ok := s.dirty.Get(s.format.New(id))
		writes := s.writes
		s.mu.Unlock()
		if ok {
			return pending, nil
		}

		rec, err := s.read(id, false)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		// A buffered write that raced the read is newer than the file.
		if pending, ok := s.dirty.Get(rec); ok {
			return pending, nil
		}
		// A write that landed during the read may already have been flushed,
		// so the bytes read can be stale.
		if rec.InUse() && s.writes == writes {
			s.cache.Set(id, rec)
		}
		return rec, nil
	})
	if err != nil {
		return zero, s.notFound(id, err)
	}

	rec := v.(R)
	if !rec.InUse() {
		return zero, s.notFound(id, nil)
	}
	return rec, nil
}

// UpdateRecord implements RecordStore. The record becomes durable at the next
// Flush or Close.
func (s *FileStore[R]) UpdateRecord(rec R) error {
	start := time.Now()
	err := s.update(rec)
	s.observeWrite(false, start, err)
	return err
}

func (s *FileStore[R]) update(rec R) error {
	if err := s.checkWrite(rec); err != nil {
		return err
	}
	// Reject records that cannot be encoded now rather than at Flush.
	if err := s.format.Encode(rec, make([]byte, s.format.RecordSize())); err != nil {
		return fmt.Errorf("store: encode %s record %d: %w", s.Kind(), rec.ID(), err)
	}

	id := rec.ID()
	s.mu.Lock()
	s.dirty.ReplaceOrInsert(rec)
	s.cache.Set(id, rec)
	s.writes++
	s.mu.Unlock()

	s.bumpHighID(id)
	return nil
}

// ForceGetRecord implements RecordStore. Ids beyond the end of the file yield
// a record that is not in use. A slot that fails normalising decode is
// returned as ForceGetRaw returns it.
func (s *FileStore[R]) ForceGetRecord(id uint64) (R, error) {
	return s.forceGet(id, false)
}

// ForceGetRaw implements RecordStore.
func (s *FileStore[R]) ForceGetRaw(id uint64) (R, error) {
	return s.forceGet(id, true)
}

func (s *FileStore[R]) forceGet(id uint64, raw bool) (R, error) {
	if s.closed.Load() {
		var zero R
		return zero, ErrClosed
	}
	start := time.Now()
	rec, err := s.read(id, raw)
	if !raw && errors.Is(err, record.ErrCorruptRecord) {
		// Forced reads serve damaged slots too, in their raw form.
		rec, err = s.read(id, true)
	}
	s.observeRead(true, start, err)
	return rec, err
}

// ForceUpdateRecord implements RecordStore.
func (s *FileStore[R]) ForceUpdateRecord(rec R) error {
	start := time.Now()
	err := s.forceUpdate(rec)
	s.observeWrite(true, start, err)
	return err
}

func (s *FileStore[R]) forceUpdate(rec R) error {
	if err := s.checkWrite(rec); err != nil {
		return err
	}
	if err := s.write(rec, make([]byte, s.format.RecordSize())); err != nil {
		return err
	}
	s.mu.Lock()
	s.cache.Remove(rec.ID())
	s.writes++
	s.mu.Unlock()
	s.bumpHighID(rec.ID())
	return nil
}

// Accept implements RecordStore.
func (s *FileStore[R]) Accept(p *Processor, rec R) error {
	return Dispatch[R](p, s, rec)
}

// Flush writes buffered records in ascending id order and syncs the file.
// Records that could not be written stay buffered.
func (s *FileStore[R]) Flush() error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.readOnly {
		return nil
	}
	return s.flush()
}

func (s *FileStore[R]) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dirty.Len() == 0 {
		return nil
	}

	var (
		written []R
		err     error
	)
	buf := make([]byte, s.format.RecordSize())
	s.dirty.Ascend(func(rec R) bool {
		if err = s.write(rec, buf); err != nil {
			return false
		}
		written = append(written, rec)
		return true
	})
	for _, rec := range written {
		s.dirty.Delete(rec)
	}
	if err != nil {
		return err
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("store: sync %s: %w", s.path, err)
	}

	if s.logger != nil {
		s.logger.Debug("store flushed", "path", s.path, "records", len(written))
	}
	return nil
}

// Pending returns the number of buffered records not yet flushed.
func (s *FileStore[R]) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty.Len()
}

// CacheStats returns the record cache hit and miss counts.
func (s *FileStore[R]) CacheStats() (hits, misses int64) {
	return s.cache.Stats()
}

// Close flushes buffered records and releases the file. Closing twice is a
// no-op.
func (s *FileStore[R]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	var errs []error
	if !s.readOnly {
		if err := s.flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.release(); err != nil {
		errs = append(errs, err)
	}

	if s.logger != nil {
		s.logger.Info("store closed", "path", s.path, "high_id", s.highID.Load())
	}
	return errors.Join(errs...)
}

func (s *FileStore[R]) release() error {
	var errs []error
	if s.mapping != nil {
		if err := s.mapping.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: close %s: %w", s.path, err))
	}
	s.cache.Clear()
	return errors.Join(errs...)
}

func (s *FileStore[R]) read(id uint64, raw bool) (R, error) {
	var zero R

	size := s.format.RecordSize()
	if id > uint64(math.MaxInt64/int64(size))-1 {
		return s.format.New(id), nil
	}

	var buf []byte
	if s.mapping != nil {
		slot, ok, err := s.mapping.Slot(id, size)
		if err != nil {
			return zero, fmt.Errorf("store: read %s record %d: %w", s.Kind(), id, err)
		}
		if !ok {
			return s.format.New(id), nil
		}
		buf = slot
	} else {
		buf = make([]byte, size)
		n, err := s.file.ReadAt(buf, int64(id)*int64(size))
		if n < size {
			if err == nil || errors.Is(err, io.EOF) {
				return s.format.New(id), nil
			}
			return zero, fmt.Errorf("store: read %s record %d: %w", s.Kind(), id, err)
		}
	}

	rec, err := s.format.Decode(id, buf, raw)
	if err != nil {
		return zero, fmt.Errorf("store: decode %s record %d: %w", s.Kind(), id, err)
	}
	return rec, nil
}

func (s *FileStore[R]) write(rec R, buf []byte) error {
	if err := s.format.Encode(rec, buf); err != nil {
		return fmt.Errorf("store: encode %s record %d: %w", s.Kind(), rec.ID(), err)
	}
	if _, err := s.file.WriteAt(buf, int64(rec.ID())*int64(len(buf))); err != nil {
		return fmt.Errorf("store: write %s record %d: %w", s.Kind(), rec.ID(), err)
	}
	return nil
}

func (s *FileStore[R]) checkWrite(rec R) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	if rec.Kind() != s.Kind() {
		return fmt.Errorf("%w: %s record in %s store", record.ErrKindMismatch, rec.Kind(), s.Kind())
	}
	size := uint64(s.format.RecordSize())
	if id := rec.ID(); id == record.NoID || id > uint64(math.MaxInt64)/size-1 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	return nil
}

func (s *FileStore[R]) bumpHighID(id uint64) {
	for {
		cur := s.highID.Load()
		if id <= cur || s.highID.CompareAndSwap(cur, id) {
			return
		}
	}
}

func (s *FileStore[R]) rebuildHighID() error {
	for id := s.highID.Load(); ; id-- {
		rec, err := s.read(id, false)
		if err != nil {
			return err
		}
		if rec.InUse() || id == 0 {
			s.highID.Store(id)
			return nil
		}
	}
}

func (s *FileStore[R]) notFound(id uint64, cause error) error {
	return &RecordNotFoundError{Kind: s.Kind(), ID: id, cause: cause}
}

func (s *FileStore[R]) observeRead(forced bool, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.OnRead(s.Kind(), forced, time.Since(start), err)
	}
}

func (s *FileStore[R]) observeWrite(forced bool, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.OnWrite(s.Kind(), forced, time.Since(start), err)
	}
}
