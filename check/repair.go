package check

import (
	"context"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/idset"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// Repair frees every record listed in report and returns how many were
// freed. Records already free are skipped.
func (c *Checker) Repair(ctx context.Context, report *Report) (int, error) {
	if c.db.ReadOnly() {
		return 0, recstore.ErrReadOnly
	}
	total := 0
	for _, kind := range report.Kinds() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.repairKind(ctx, kind, report.IDs(kind))
		total += n
		if err != nil {
			return total, err
		}
		if c.logger != nil {
			c.logger.InfoContext(ctx, "records freed", "kind", kind, "count", n)
		}
	}
	return total, nil
}

func (c *Checker) repairKind(ctx context.Context, kind record.Kind, ids *idset.Set) (int, error) {
	switch kind {
	case record.KindNode:
		return free(ctx, c.db.Nodes(), ids)
	case record.KindRelationship:
		return free(ctx, c.db.Relationships(), ids)
	case record.KindProperty:
		return free(ctx, c.db.Properties(), ids)
	case record.KindString:
		return free(ctx, c.db.Strings(), ids)
	case record.KindArray:
		return free(ctx, c.db.Arrays(), ids)
	case record.KindRelationshipType:
		return free(ctx, c.db.RelationshipTypes(), ids)
	case record.KindPropertyIndex:
		return free(ctx, c.db.PropertyIndex(), ids)
	default:
		return 0, nil
	}
}

func free[R record.Record](ctx context.Context, s *store.FileStore[R], ids *idset.Set) (int, error) {
	n := 0
	p := store.Handle(&store.Processor{Name: "repair"}, func(rs store.RecordStore[R], rec R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !rec.InUse() {
			return nil
		}
		rec.SetInUse(false)
		if err := rs.ForceUpdateRecord(rec); err != nil {
			return err
		}
		n++
		return nil
	})
	if err := store.ApplyByID(p, s, ids.Seq()); err != nil {
		return n, err
	}
	return n, s.Flush()
}
