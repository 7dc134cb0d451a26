// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open store file with positional read/write and sync
//   - [FileSystem]: filesystem operations used by stores and the local blob store
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("nodestore.db", fs.Fault{FailOnRead: true})
//	// open a store with store.WithFileSystem(ffs)
//
// # Design Notes
//
// This package does NOT include context.Context parameters. Record reads and
// writes are single positional syscalls and are not interruptible.
package fs
