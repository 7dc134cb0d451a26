// Package minio stores backups on MinIO or any other S3-compatible server
// through the minio-go client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dst := minioblob.NewStore(client, "graph-backups", "prod/")
//	res, err := backup.Run(ctx, db, dst)
//
// Create streams the blob through PutObject; Abort cancels the upload so no
// object is committed.
package minio
