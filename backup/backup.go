package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/blobstore"
	"github.com/hupe1980/recstore/internal/conv"
	"github.com/hupe1980/recstore/internal/hash"
	"github.com/hupe1980/recstore/internal/resource"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// StoreResult summarises the backup or restore of one store.
type StoreResult struct {
	Kind    record.Kind
	Blob    string
	HighID  uint64
	Records uint64
	// Bytes is the blob size, header included.
	Bytes int64
}

// Result lists the per-store results in store order.
type Result struct {
	Stores  []StoreResult
	Elapsed time.Duration
}

// Records returns the number of records over all stores.
func (r *Result) Records() uint64 {
	var n uint64
	for _, s := range r.Stores {
		n += s.Records
	}
	return n
}

// BlobName returns the name of the backup blob of the store file storeFile.
func BlobName(prefix, storeFile string) string {
	return path.Join(prefix, filepath.Base(storeFile)+Suffix)
}

type job func(ctx context.Context, o *options, rc *resource.Controller) (StoreResult, error)

// forEachStore runs one job per store of db, at most o.concurrency at a time.
func forEachStore(ctx context.Context, o *options, jobs []job) ([]StoreResult, error) {
	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: o.concurrency,
		IOLimitBytesPerSec:   o.ioLimit,
	})
	results := make([]StoreResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			if err := rc.AcquireBackground(gctx); err != nil {
				return err
			}
			defer rc.ReleaseBackground()

			res, err := j(gctx, o, rc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run writes a backup of every store of db to dst. Buffered records of a
// writable db are flushed first.
func Run(ctx context.Context, db *recstore.DB, dst blobstore.BlobStore, optFns ...Option) (*Result, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if !db.ReadOnly() {
		if err := db.Flush(); err != nil {
			return nil, fmt.Errorf("backup: flush: %w", err)
		}
	}

	start := time.Now()
	stores, err := forEachStore(ctx, &o, []job{
		storeJob(db.Nodes(), dst, backupStore[*record.Node]),
		storeJob(db.Relationships(), dst, backupStore[*record.Relationship]),
		storeJob(db.Properties(), dst, backupStore[*record.Property]),
		storeJob(db.Strings(), dst, backupStore[*record.Dynamic]),
		storeJob(db.Arrays(), dst, backupStore[*record.Dynamic]),
		storeJob(db.RelationshipTypes(), dst, backupStore[*record.RelationshipType]),
		storeJob(db.PropertyIndex(), dst, backupStore[*record.PropertyIndex]),
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Stores: stores, Elapsed: time.Since(start)}
	if o.logger != nil {
		o.logger.InfoContext(ctx, "backup done", "dir", db.Dir(), "records", res.Records(), "elapsed", res.Elapsed)
	}
	return res, nil
}

type storeFunc[R record.Record] func(ctx context.Context, s *store.FileStore[R], bs blobstore.BlobStore, o *options, rc *resource.Controller) (StoreResult, error)

func storeJob[R record.Record](s *store.FileStore[R], bs blobstore.BlobStore, fn storeFunc[R]) job {
	return func(ctx context.Context, o *options, rc *resource.Controller) (StoreResult, error) {
		return fn(ctx, s, bs, o, rc)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func backupStore[R record.Record](ctx context.Context, s *store.FileStore[R], dst blobstore.BlobStore, o *options, rc *resource.Controller) (StoreResult, error) {
	res := StoreResult{Kind: s.Kind(), Blob: BlobName(o.prefix, s.Path()), HighID: s.HighID()}

	blob, err := dst.Create(ctx, res.Blob)
	if err != nil {
		return res, fmt.Errorf("backup: create %s: %w", res.Blob, err)
	}
	if err := writeFrame(ctx, s, blob, o, rc, &res); err != nil {
		return res, errors.Join(fmt.Errorf("backup: %s: %w", res.Blob, err), blob.Abort())
	}
	if err := blob.Close(); err != nil {
		return res, fmt.Errorf("backup: commit %s: %w", res.Blob, err)
	}

	if o.logger != nil {
		o.logger.InfoContext(ctx, "store backed up",
			"kind", res.Kind, "blob", res.Blob, "records", res.Records, "bytes", res.Bytes)
	}
	return res, nil
}

func writeFrame[R record.Record](ctx context.Context, s *store.FileStore[R], blob blobstore.WritableBlob, o *options, rc *resource.Controller, res *StoreResult) error {
	size, err := conv.IntToUint32(s.RecordSize())
	if err != nil {
		return err
	}
	out := &countingWriter{w: resource.NewRateLimitedWriter(ctx, blob, rc)}
	hdr, _ := Header{
		Version:     Version,
		Kind:        s.Kind(),
		Compression: o.compression,
		RecordSize:  size,
		HighID:      res.HighID,
	}.MarshalBinary()
	if _, err := out.Write(hdr); err != nil {
		return err
	}

	body, err := newCompressor(out, o.compression, o.level)
	if err != nil {
		return err
	}

	format := s.Format()
	buf := make([]byte, 8+s.RecordSize())
	sum := hash.NewCRC32C()
	p := &store.Processor{Name: "backup"}
	if o.logger != nil {
		p.ProgressInit = store.LogProgressInit(o.logger, o.progressInterval)
	}
	store.Handle(p, func(_ store.RecordStore[R], rec R) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		le.PutUint64(buf, rec.ID())
		if err := format.Encode(rec, buf[8:]); err != nil {
			return err
		}
		if _, err := body.Write(buf); err != nil {
			return err
		}
		_, _ = sum.Write(buf)
		res.Records++
		return nil
	})

	// Scan up to the high id captured in the header.
	filters := []store.Predicate[R]{store.InUse[R], store.IDRange[R](0, res.HighID)}
	if err := store.ApplyFiltered(p, s, filters...); err != nil {
		_ = body.Close()
		return err
	}

	var trailer [trailerSize]byte
	le.PutUint64(trailer[:], record.NoID)
	le.PutUint64(trailer[8:], res.Records)
	le.PutUint32(trailer[16:], sum.Sum32())
	if _, err := body.Write(trailer[:]); err != nil {
		_ = body.Close()
		return err
	}
	if err := body.Close(); err != nil {
		return err
	}
	if err := blob.Sync(); err != nil {
		return err
	}
	res.Bytes = out.n
	return nil
}
