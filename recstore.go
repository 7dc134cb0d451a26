package recstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/hupe1980/recstore/config"
	"github.com/hupe1980/recstore/internal/fs"
	"github.com/hupe1980/recstore/internal/resource"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// Store file names inside a graph store directory.
const (
	NodeStoreFile             = "nodestore.db"
	RelationshipStoreFile     = "relationshipstore.db"
	PropertyStoreFile         = "propertystore.db"
	StringStoreFile           = "propertystore.db.strings"
	ArrayStoreFile            = "propertystore.db.arrays"
	RelationshipTypeStoreFile = "relationshiptypestore.db"
	PropertyIndexStoreFile    = "propertystore.db.index"
)

// StoreFiles lists the store files in store order.
var StoreFiles = []string{
	NodeStoreFile,
	RelationshipStoreFile,
	PropertyStoreFile,
	StringStoreFile,
	ArrayStoreFile,
	RelationshipTypeStoreFile,
	PropertyIndexStoreFile,
}

// ManagedStore is the kind-independent surface of an opened store.
type ManagedStore interface {
	store.Descriptor
	Path() string
	ReadOnly() bool
	Pending() int
	Flush() error
	Close() error
}

// DB is an open graph store directory.
type DB struct {
	dir      string
	params   config.Params
	readOnly bool
	logger   *Logger
	rc       *resource.Controller

	nodes     *store.FileStore[*record.Node]
	rels      *store.FileStore[*record.Relationship]
	props     *store.FileStore[*record.Property]
	strs      *store.FileStore[*record.Dynamic]
	arrays    *store.FileStore[*record.Dynamic]
	relTypes  *store.FileStore[*record.RelationshipType]
	propIndex *store.FileStore[*record.PropertyIndex]

	// stores holds the opened stores in store order.
	stores []ManagedStore

	closed atomic.Bool
}

// Open opens the graph store in dir, creating missing store files unless the
// parameters ask for a read-only or backup slave store.
func Open(dir string, optFns ...Option) (*DB, error) {
	opts := options{
		params:           config.DefaultParams(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		fs:               fs.Default,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	params := opts.params
	readOnly := params.ReadOnly() || params.BackupSlave()
	ctx := context.Background()

	db := &DB{
		dir:      dir,
		params:   params,
		readOnly: readOnly,
		logger:   opts.logger,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes: opts.memoryLimit,
		}),
	}

	if err := db.open(opts); err != nil {
		_ = db.closeStores()
		db.logger.LogOpen(ctx, dir, readOnly, err)
		return nil, err
	}

	if params.Bool(config.DumpConfiguration) {
		for _, k := range slices.Sorted(maps.Keys(params)) {
			db.logger.InfoContext(ctx, "configuration", "key", k, "value", params[k])
		}
	}
	db.logger.LogOpen(ctx, dir, readOnly, nil)
	return db, nil
}

func (db *DB) open(opts options) error {
	if !db.readOnly {
		if err := opts.fs.MkdirAll(db.dir, 0o755); err != nil {
			return fmt.Errorf("recstore: create %s: %w", db.dir, err)
		}
	}

	stringBlock, err := db.params.Int(config.StringBlockSize, record.DefaultBlockSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	arrayBlock, err := db.params.Int(config.ArrayBlockSize, record.DefaultBlockSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	base := []store.Option{
		store.WithFileSystem(opts.fs),
		store.WithResourceController(db.rc),
		store.WithReadOnly(db.readOnly),
		store.WithMemoryMapped(db.params.Bool(config.UseMemoryMappedBuffers)),
		store.WithRebuildHighID(db.params.Bool(config.RebuildIDGeneratorsFast)),
		store.WithMetrics(metricsObserver{c: opts.metricsCollector}),
	}

	if db.nodes, err = openStore(db, base, NodeStoreFile, config.NodeStoreMappedMemory, record.NodeFormat{}); err != nil {
		return err
	}
	if db.rels, err = openStore(db, base, RelationshipStoreFile, config.RelationshipStoreMappedMemory, record.RelationshipFormat{}); err != nil {
		return err
	}
	if db.props, err = openStore(db, base, PropertyStoreFile, config.PropertyStoreMappedMemory, record.PropertyFormat{}); err != nil {
		return err
	}
	if db.strs, err = openStore(db, base, StringStoreFile, config.StringStoreMappedMemory,
		record.NewDynamicFormat(record.KindString, stringBlock)); err != nil {
		return err
	}
	if db.arrays, err = openStore(db, base, ArrayStoreFile, config.ArrayStoreMappedMemory,
		record.NewDynamicFormat(record.KindArray, arrayBlock)); err != nil {
		return err
	}
	if db.relTypes, err = openStore(db, base, RelationshipTypeStoreFile, "", record.RelationshipTypeFormat{}); err != nil {
		return err
	}
	if db.propIndex, err = openStore(db, base, PropertyIndexStoreFile, config.PropertyIndexStoreMappedMemory, record.PropertyIndexFormat{}); err != nil {
		return err
	}
	return nil
}

// openStore opens one store; budgetKey names its cache budget parameter, ""
// selects the default budget.
func openStore[R record.Record](db *DB, base []store.Option, name, budgetKey string, format record.Format[R]) (*store.FileStore[R], error) {
	cacheBytes, err := db.params.Size(budgetKey)
	switch {
	case errors.Is(err, config.ErrMissing):
		cacheBytes = store.DefaultCacheBytes
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	path := filepath.Join(db.dir, name)
	opts := append(slices.Clone(base),
		store.WithCacheBytes(int64(cacheBytes)),
		store.WithLogger(db.logger.WithStore(path).Logger),
	)

	s, err := store.Open(path, format, opts...)
	if err != nil {
		return nil, err
	}
	db.stores = append(db.stores, s)
	return s, nil
}

// Dir returns the store directory.
func (db *DB) Dir() string { return db.dir }

// Params returns the parameters the DB was opened with.
func (db *DB) Params() config.Params { return maps.Clone(db.params) }

// ReadOnly reports whether the stores reject writes.
func (db *DB) ReadOnly() bool { return db.readOnly }

// Logger returns the DB logger.
func (db *DB) Logger() *Logger { return db.logger }

// Nodes returns the node store.
func (db *DB) Nodes() *store.FileStore[*record.Node] { return db.nodes }

// Relationships returns the relationship store.
func (db *DB) Relationships() *store.FileStore[*record.Relationship] { return db.rels }

// Properties returns the property store.
func (db *DB) Properties() *store.FileStore[*record.Property] { return db.props }

// Strings returns the dynamic string block store.
func (db *DB) Strings() *store.FileStore[*record.Dynamic] { return db.strs }

// Arrays returns the dynamic array block store.
func (db *DB) Arrays() *store.FileStore[*record.Dynamic] { return db.arrays }

// RelationshipTypes returns the relationship type token store.
func (db *DB) RelationshipTypes() *store.FileStore[*record.RelationshipType] { return db.relTypes }

// PropertyIndex returns the property key token store.
func (db *DB) PropertyIndex() *store.FileStore[*record.PropertyIndex] { return db.propIndex }

// Stores returns every store in store order.
func (db *DB) Stores() []ManagedStore {
	return slices.Clone(db.stores)
}

// Store returns the store holding kind.
func (db *DB) Store(kind record.Kind) (ManagedStore, bool) {
	for _, s := range db.stores {
		if s.Kind() == kind {
			return s, true
		}
	}
	return nil, false
}

// ApplyAll applies p to every store whose kind it supports, in store order.
// With inUseOnly only records in use are handed to p. ctx is checked between
// stores.
func (db *DB) ApplyAll(ctx context.Context, p *store.Processor, inUseOnly bool) error {
	if db.closed.Load() {
		return ErrClosed
	}
	steps := []func() error{
		func() error { return applyStore(ctx, db, p, db.nodes, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.rels, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.props, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.strs, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.arrays, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.relTypes, inUseOnly) },
		func() error { return applyStore(ctx, db, p, db.propIndex, inUseOnly) },
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func applyStore[R record.Record](ctx context.Context, db *DB, p *store.Processor, s *store.FileStore[R], inUseOnly bool) error {
	if !p.Supports(s.Kind()) {
		return nil
	}
	var filters []store.Predicate[R]
	if inUseOnly {
		filters = append(filters, store.InUse[R])
	}
	high := s.HighID()
	err := store.ApplyFiltered(p, s, filters...)
	db.logger.LogApply(ctx, p.Name, s.Kind(), high, err)
	return err
}

// Flush writes buffered records of every store.
func (db *DB) Flush() error {
	if db.closed.Load() {
		return ErrClosed
	}
	var errs []error
	for _, s := range db.stores {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every store. Closing twice is a no-op.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	err := db.closeStores()
	db.logger.LogClose(context.Background(), db.dir, err)
	return err
}

func (db *DB) closeStores() error {
	var errs []error
	for _, s := range slices.Backward(db.stores) {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// String implements fmt.Stringer.
func (db *DB) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "recstore(%s", db.dir)
	for _, s := range db.stores {
		fmt.Fprintf(&b, " %s=%d", s.Kind(), s.HighID())
	}
	b.WriteString(")")
	return b.String()
}
