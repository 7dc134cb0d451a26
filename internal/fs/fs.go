package fs

import (
	"io"
	"os"
)

// File is an open store or blob file. Record stores use the positional
// ReadAt/WriteAt methods only.
type File interface {
	io.ReadWriteCloser
	io.ReaderAt
	io.WriterAt
	Sync() error
	Stat() (os.FileInfo, error)
	Name() string
}

// FileSystem is the set of file operations the stores and the local blob
// store perform.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
}

// OpenRecordFile opens a record store file. A writable file is created when
// missing; a read-only one must already exist.
func OpenRecordFile(fsys FileSystem, name string, readOnly bool) (File, error) {
	if readOnly {
		return fsys.OpenFile(name, os.O_RDONLY, 0)
	}
	return fsys.OpenFile(name, os.O_RDWR|os.O_CREATE, 0o644)
}

// LocalFS is the operating system's file system.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm) //nolint:gosec // G304: store paths are configured
}

func (LocalFS) Remove(name string) error                     { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error         { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error)        { return os.Stat(name) }
func (LocalFS) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }
func (LocalFS) ReadDir(name string) ([]os.DirEntry, error)   { return os.ReadDir(name) }

// Default is the file system used unless an option overrides it.
var Default FileSystem = LocalFS{}
