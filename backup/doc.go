// Package backup copies the in-use records of a graph store to a
// blobstore.BlobStore and restores them.
//
// Each store is written to its own blob named after the store file with a
// ".bak" suffix. A blob starts with a fixed header followed by a compressed
// stream of (id, record) entries and a trailer:
//
//	magic "RSBK" | version u8 | kind u8 | compression u8 | reserved u8 |
//	record size u32 | high id u64
//	stream: { id u64 | record bytes }* | NoID u64 | count u64 | crc32c u32
//
// All integers are little-endian. The checksum covers every entry of the stream. Records are read with forced access through
// a store.Processor, so a backup of a running store sees only flushed data.
//
//	res, err := backup.Run(ctx, db, blobstore.NewLocalStore("/backups"),
//	    backup.WithCompression(backup.CompressionZstd),
//	    backup.WithPrefix("2026-10-14"),
//	)
package backup
