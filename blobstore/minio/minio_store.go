package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"

	"github.com/hupe1980/recstore/blobstore"
)

// ErrUploadAborted is the error an aborted upload fails with.
var ErrUploadAborted = errors.New("minio: upload aborted")

const contentType = "application/octet-stream"

// Store keeps backup blobs as objects under a key prefix of one bucket.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore returns a store writing objects named prefix/<blob name> to bucket.
func NewStore(client *minio.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *Store) objectName(name string) string {
	return path.Join(s.prefix, name)
}

// Open stats the object and returns a blob reading it by range.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	object := s.objectName(name)
	info, err := s.client.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("minio: %s: %w", object, blobstore.ErrNotFound)
		}
		return nil, fmt.Errorf("minio: stat %s: %w", object, err)
	}
	return &objectBlob{client: s.client, bucket: s.bucket, object: object, size: info.Size}, nil
}

// Put uploads data as one object.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	object := s.objectName(name)
	_, err := s.client.PutObject(ctx, s.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", object, err)
	}
	return nil
}

// Create starts a streaming upload. The object exists once Close returns nil.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	object := s.objectName(name)
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	u := &upload{pw: pw, cancel: cancel, done: make(chan error, 1)}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, object, pr, -1,
			minio.PutObjectOptions{ContentType: contentType})
		if err != nil {
			err = fmt.Errorf("minio: upload %s: %w", object, err)
		}
		_ = pr.CloseWithError(err)
		u.done <- err
	}()
	return u, nil
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	object := s.objectName(name)
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return fmt.Errorf("minio: remove %s: %w", object, err)
	}
	return nil
}

// List returns the sorted names of the blobs starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.objectName(prefix),
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %s: %w", s.bucket, obj.Err)
		}
		name := strings.TrimPrefix(strings.TrimPrefix(obj.Key, s.prefix), "/")
		if name != "" && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

type objectBlob struct {
	client *minio.Client
	bucket string
	object string
	size   int64
}

func (b *objectBlob) Size() int64  { return b.size }
func (b *objectBlob) Close() error { return nil }

func (b *objectBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}
	n := min(int64(len(p)), b.size-off)
	obj, err := b.rangeReader(ctx, off, n)
	if err != nil {
		return 0, err
	}
	defer func() { _ = obj.Close() }()

	read, err := io.ReadFull(obj, p[:n])
	if err == nil && n < int64(len(p)) {
		err = io.EOF
	}
	return read, err
}

func (b *objectBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	switch {
	case off > b.size:
		return nil, io.EOF
	case off == b.size || length <= 0:
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.rangeReader(ctx, off, length)
}

func (b *objectBlob) rangeReader(ctx context.Context, off, length int64) (*minio.Object, error) {
	var opts minio.GetObjectOptions
	if err := opts.SetRange(off, min(off+length, b.size)-1); err != nil {
		return nil, err
	}
	obj, err := b.client.GetObject(ctx, b.bucket, b.object, opts)
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", b.object, err)
	}
	return obj, nil
}

// upload feeds a background PutObject through a pipe.
type upload struct {
	pw       *io.PipeWriter
	cancel   context.CancelFunc
	done     chan error
	finished atomic.Bool
}

func (u *upload) Write(p []byte) (int, error) {
	if u.finished.Load() {
		return 0, blobstore.ErrBlobClosed
	}
	return u.pw.Write(p)
}

func (u *upload) Sync() error { return nil }

func (u *upload) Close() error {
	if !u.finished.CompareAndSwap(false, true) {
		return blobstore.ErrBlobClosed
	}
	defer u.cancel()
	if err := u.pw.Close(); err != nil {
		return err
	}
	return <-u.done
}

// Abort stops the upload without committing the object.
func (u *upload) Abort() error {
	if !u.finished.CompareAndSwap(false, true) {
		return nil
	}
	_ = u.pw.CloseWithError(ErrUploadAborted)
	u.cancel()
	<-u.done
	return nil
}
