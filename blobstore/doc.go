// Package blobstore provides the destination abstraction for store backups.
//
// A [BlobStore] holds named immutable blobs. Backups are streamed through
// [WritableBlob] and read back sequentially with [NewReader].
//
// # Built-in Implementations
//
//   - [MemoryStore]: in-memory, for tests
//   - [LocalStore]: local filesystem, atomic rename on Close
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
