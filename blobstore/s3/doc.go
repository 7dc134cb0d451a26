// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	dst, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("backups/graph/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//	if err != nil {
//	    return err
//	}
//	_, err = backup.Run(ctx, db, dst)
//
// # Features
//
//   - Range reads for restore streams
//   - Multipart uploads for large store backups
//   - Automatic pagination for listing
//   - Configurable prefix for keeping several backups in one bucket
package s3
