package store

import (
	"log/slog"
	"time"

	"github.com/hupe1980/recstore/internal/fs"
	"github.com/hupe1980/recstore/internal/resource"
	"github.com/hupe1980/recstore/record"
)

// DefaultCacheBytes is the record cache budget of a store opened without
// WithCacheBytes.
const DefaultCacheBytes = 4 << 20

// MetricsObserver receives per-operation store metrics.
type MetricsObserver interface {
	OnRead(kind record.Kind, forced bool, duration time.Duration, err error)
	OnWrite(kind record.Kind, forced bool, duration time.Duration, err error)
	OnCacheHit(kind record.Kind)
	OnCacheMiss(kind record.Kind)
}

type options struct {
	fs            fs.FileSystem
	logger        *slog.Logger
	cacheBytes    int64
	rc            *resource.Controller
	readOnly      bool
	memoryMapped  bool
	rebuildHighID bool
	metrics       MetricsObserver
}

// Option configures a FileStore.
type Option func(*options)

// WithFileSystem sets the file system the store file is opened on.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCacheBytes sets the record cache budget in bytes. Zero disables the cache.
func WithCacheBytes(n int64) Option {
	return func(o *options) {
		if n >= 0 {
			o.cacheBytes = n
		}
	}
}

// WithResourceController charges cached records against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithReadOnly opens the store read-only. Writes fail with ErrReadOnly.
func WithReadOnly(readOnly bool) Option {
	return func(o *options) {
		o.readOnly = readOnly
	}
}

// WithMemoryMapped serves forced reads of a read-only store from a memory
// mapping of the file. The mapping is made from the file path on the local
// file system. It has no effect on writable stores.
func WithMemoryMapped(mapped bool) Option {
	return func(o *options) {
		o.memoryMapped = mapped
	}
}

// WithRebuildHighID derives the high id from the highest in-use record instead
// of the file length, dropping trailing free slots.
func WithRebuildHighID(rebuild bool) Option {
	return func(o *options) {
		o.rebuildHighID = rebuild
	}
}

// WithMetrics sets the metrics observer for the store.
func WithMetrics(m MetricsObserver) Option {
	return func(o *options) {
		o.metrics = m
	}
}
