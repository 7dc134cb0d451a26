package check

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// DefaultProgressInterval throttles progress logging.
const DefaultProgressInterval = 5 * time.Second

// Checker validates the stores of a DB.
type Checker struct {
	db       *recstore.DB
	logger   *slog.Logger
	interval time.Duration
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the progress logger. The default is the DB logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// WithProgressInterval sets the minimum time between progress log lines.
func WithProgressInterval(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New returns a Checker for db.
func New(db *recstore.DB, optFns ...Option) *Checker {
	c := &Checker{
		db:       db,
		logger:   db.Logger().Logger,
		interval: DefaultProgressInterval,
	}
	for _, fn := range optFns {
		fn(c)
	}
	return c
}

// Run checks every in-use record. Buffered records of a writable DB are
// flushed first, since references are resolved with forced reads.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	if !c.db.ReadOnly() {
		if err := c.db.Flush(); err != nil {
			return nil, err
		}
	}
	report := newReport()
	if err := c.db.ApplyAll(ctx, c.processor(ctx, report), true); err != nil {
		return report, err
	}
	if c.logger != nil {
		c.logger.InfoContext(ctx, "check done", "dir", c.db.Dir(), "inconsistencies", report.Len())
	}
	return report, nil
}

func (c *Checker) processor(ctx context.Context, r *Report) *store.Processor {
	db := c.db
	p := &store.Processor{Name: "check"}
	if c.logger != nil {
		p.ProgressInit = store.LogProgressInit(c.logger, c.interval)
	}

	store.Handle(p, func(_ store.RecordStore[*record.Node], n *record.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: record.KindNode, id: n.ID()}
		r.count(v.kind)
		return firstErr(
			ref(v, "next relationship", db.Relationships(), n.NextRel, false),
			ref(v, "next property", db.Properties(), n.NextProp, false),
		)
	})

	store.Handle(p, func(_ store.RecordStore[*record.Relationship], rel *record.Relationship) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: record.KindRelationship, id: rel.ID()}
		r.count(v.kind)
		return firstErr(
			ref(v, "first node", db.Nodes(), rel.FirstNode, true),
			ref(v, "second node", db.Nodes(), rel.SecondNode, true),
			ref(v, "type", db.RelationshipTypes(), uint64(rel.Type), true),
			ref(v, "first previous", db.Relationships(), rel.FirstPrev, false),
			ref(v, "first next", db.Relationships(), rel.FirstNext, false),
			ref(v, "second previous", db.Relationships(), rel.SecondPrev, false),
			ref(v, "second next", db.Relationships(), rel.SecondNext, false),
			ref(v, "next property", db.Properties(), rel.NextProp, false),
		)
	})

	store.Handle(p, func(_ store.RecordStore[*record.Property], prop *record.Property) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: record.KindProperty, id: prop.ID()}
		r.count(v.kind)
		errs := []error{
			ref(v, "key", db.PropertyIndex(), uint64(prop.KeyIndex), true),
			ref(v, "previous property", db.Properties(), prop.PrevProp, false),
			ref(v, "next property", db.Properties(), prop.NextProp, false),
		}
		switch prop.Type {
		case record.PropertyString:
			errs = append(errs, startBlock(v, "string value", db.Strings(), prop.Value))
		case record.PropertyArray:
			errs = append(errs, startBlock(v, "array value", db.Arrays(), prop.Value))
		}
		return firstErr(errs...)
	})

	store.Handle(p, func(s store.RecordStore[*record.Dynamic], d *record.Dynamic) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: s.Kind(), id: d.ID()}
		r.count(v.kind)
		if d.Overlong() {
			v.report("length field exceeds the block size")
		}
		if d.NextBlock == record.NoID {
			return nil
		}
		if d.NextBlock == d.ID() {
			v.report("next block points at itself")
			return nil
		}
		target := db.Strings()
		if s.Kind() == record.KindArray {
			target = db.Arrays()
		}
		return ref(v, "next block", target, d.NextBlock, false)
	})

	store.Handle(p, func(_ store.RecordStore[*record.RelationshipType], t *record.RelationshipType) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: record.KindRelationshipType, id: t.ID()}
		r.count(v.kind)
		return startBlock(v, "name", db.Strings(), t.NameBlock)
	})

	store.Handle(p, func(_ store.RecordStore[*record.PropertyIndex], k *record.PropertyIndex) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := validator{r: r, kind: record.KindPropertyIndex, id: k.ID()}
		r.count(v.kind)
		return startBlock(v, "key name", db.Strings(), k.KeyBlock)
	})

	return p
}

// validator reports findings for one record.
type validator struct {
	r    *Report
	kind record.Kind
	id   uint64
}

func (v validator) report(format string, args ...any) {
	v.r.add(v.kind, v.id, format, args...)
}

// ref validates that target holds an in-use record at id. Unset references
// (NoID) are findings only when required.
func ref[R record.Record](v validator, field string, target *store.FileStore[R], id uint64, required bool) error {
	_, err := lookup(v, field, target, id, required)
	return err
}

func lookup[R record.Record](v validator, field string, target *store.FileStore[R], id uint64, required bool) (R, error) {
	var zero R
	if id == record.NoID {
		if required {
			v.report("%s is unset", field)
		}
		return zero, nil
	}
	if high := target.HighID(); id > high {
		v.report("%s %d is beyond %s high id %d", field, id, target.Kind(), high)
		return zero, nil
	}
	rec, err := target.ForceGetRecord(id)
	if err != nil {
		return zero, err
	}
	if !rec.InUse() {
		v.report("%s %d is not an in-use %s record", field, id, target.Kind())
		return zero, nil
	}
	return rec, nil
}

func startBlock(v validator, field string, target *store.FileStore[*record.Dynamic], id uint64) error {
	block, err := lookup(v, field, target, id, true)
	if err != nil || block == nil {
		return err
	}
	if !block.StartBlock {
		v.report("%s %d is not the start of a %s chain", field, id, target.Kind())
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
