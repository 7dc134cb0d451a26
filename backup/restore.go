package backup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/recstore"
	"github.com/hupe1980/recstore/blobstore"
	"github.com/hupe1980/recstore/internal/hash"
	"github.com/hupe1980/recstore/internal/resource"
	"github.com/hupe1980/recstore/record"
	"github.com/hupe1980/recstore/store"
)

// Restore replays the backup in src into db with forced writes. Slots that are
// in use in db but absent from the backup are freed, including slots above the
// backed up high id. Each store's high id is raised to the backed up high id
// and never lowered. db must be writable.
//
// Records are written as they are read; a corrupt backup fails after the
// records preceding the damage have been restored.
func Restore(ctx context.Context, src blobstore.BlobStore, db *recstore.DB, optFns ...Option) (*Result, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if db.ReadOnly() {
		return nil, recstore.ErrReadOnly
	}
	// Pending writes would land on top of the restored records.
	if err := db.Flush(); err != nil {
		return nil, fmt.Errorf("backup: flush: %w", err)
	}

	start := time.Now()
	stores, err := forEachStore(ctx, &o, []job{
		storeJob(db.Nodes(), src, restoreStore[*record.Node]),
		storeJob(db.Relationships(), src, restoreStore[*record.Relationship]),
		storeJob(db.Properties(), src, restoreStore[*record.Property]),
		storeJob(db.Strings(), src, restoreStore[*record.Dynamic]),
		storeJob(db.Arrays(), src, restoreStore[*record.Dynamic]),
		storeJob(db.RelationshipTypes(), src, restoreStore[*record.RelationshipType]),
		storeJob(db.PropertyIndex(), src, restoreStore[*record.PropertyIndex]),
	})
	if err != nil {
		return nil, err
	}
	res := &Result{Stores: stores, Elapsed: time.Since(start)}
	if o.logger != nil {
		o.logger.InfoContext(ctx, "restore done", "dir", db.Dir(), "records", res.Records(), "elapsed", res.Elapsed)
	}
	return res, nil
}

func restoreStore[R record.Record](ctx context.Context, s *store.FileStore[R], src blobstore.BlobStore, o *options, rc *resource.Controller) (StoreResult, error) {
	res := StoreResult{Kind: s.Kind(), Blob: BlobName(o.prefix, s.Path())}

	blob, err := src.Open(ctx, res.Blob)
	if err != nil {
		return res, fmt.Errorf("backup: open %s: %w", res.Blob, err)
	}
	defer func() { _ = blob.Close() }()
	res.Bytes = blob.Size()

	stream, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return res, fmt.Errorf("backup: read %s: %w", res.Blob, err)
	}
	defer func() { _ = stream.Close() }()

	if err := readFrame(ctx, s, bufio.NewReader(resource.NewRateLimitedReader(ctx, stream, rc)), &res); err != nil {
		return res, fmt.Errorf("backup: restore %s: %w", res.Blob, err)
	}
	if err := s.Flush(); err != nil {
		return res, fmt.Errorf("backup: flush %s: %w", res.Blob, err)
	}

	if o.logger != nil {
		o.logger.InfoContext(ctx, "store restored", "kind", res.Kind, "blob", res.Blob, "records", res.Records)
	}
	return res, nil
}

func readFrame[R record.Record](ctx context.Context, s *store.FileStore[R], r io.Reader, res *StoreResult) error {
	hdr, err := ReadHeader(r)
	if err != nil {
		return err
	}
	if hdr.Kind != s.Kind() {
		return fmt.Errorf("%w: backup holds %s records, store holds %s", ErrStoreMismatch, hdr.Kind, s.Kind())
	}
	if int(hdr.RecordSize) != s.RecordSize() {
		return fmt.Errorf("%w: record size %d, store uses %d", ErrStoreMismatch, hdr.RecordSize, s.RecordSize())
	}
	res.HighID = hdr.HighID

	body, err := newDecompressor(r, hdr.Compression)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	format := s.Format()
	buf := make([]byte, 8+s.RecordSize())
	sum := hash.NewCRC32C()
	var next uint64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := readFull(body, buf[:8]); err != nil {
			return err
		}
		id := le.Uint64(buf)
		if id == record.NoID {
			break
		}
		if id < next || id > hdr.HighID {
			return fmt.Errorf("%w: id %d out of order", ErrCorrupt, id)
		}
		if err := readFull(body, buf[8:]); err != nil {
			return err
		}
		_, _ = sum.Write(buf)
		rec, err := format.Decode(id, buf[8:], false)
		if err != nil {
			return fmt.Errorf("%w: id %d: %w", ErrCorrupt, id, err)
		}
		if !rec.InUse() {
			return fmt.Errorf("%w: id %d not in use", ErrCorrupt, id)
		}
		if err := freeRange(s, next, id); err != nil {
			return err
		}
		if err := s.ForceUpdateRecord(rec); err != nil {
			return err
		}
		res.Records++
		next = id + 1
	}

	var trailer [trailerSize - 8]byte
	if err := readFull(body, trailer[:]); err != nil {
		return err
	}
	if count := le.Uint64(trailer[:]); count != res.Records {
		return fmt.Errorf("%w: trailer counts %d records, stream held %d", ErrCorrupt, count, res.Records)
	}
	if crc := le.Uint32(trailer[8:]); crc != sum.Sum32() {
		return fmt.Errorf("%w: checksum %08x, computed %08x", ErrCorrupt, crc, sum.Sum32())
	}

	// Records written after the backup may sit above its high id; the store
	// high id itself never shrinks.
	if err := freeRange(s, next, max(hdr.HighID, s.HighID())+1); err != nil {
		return err
	}
	if s.HighID() < hdr.HighID {
		return s.ForceUpdateRecord(format.New(hdr.HighID))
	}
	return nil
}

// freeRange frees the in-use slots in [lo, hi) that exist in s.
func freeRange[R record.Record](s *store.FileStore[R], lo, hi uint64) error {
	hi = min(hi, s.HighID()+1)
	for id := lo; id < hi; id++ {
		rec, err := s.ForceGetRecord(id)
		if err != nil {
			return err
		}
		if rec.InUse() {
			if err := s.ForceUpdateRecord(s.Format().New(id)); err != nil {
				return err
			}
		}
	}
	return nil
}

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: truncated", ErrCorrupt)
		}
		return err
	}
	return nil
}
