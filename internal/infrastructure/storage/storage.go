// Package storage provides the filesystem primitives the instrumentation core
// writes through: create, delete, open, positional read/write and resize.
//
// Paths are slash-separated names relative to the filesystem root.
package storage

import "errors"

// ErrNotExist is returned when a named file does not exist
var ErrNotExist = errors.New("storage: file does not exist")

// Mode selects how a file is opened
type Mode int

const (
	ModeRead Mode = 1 << iota
	ModeWrite
)

// WriteOption controls a single positional write
type WriteOption struct {
	// Flush forces the written bytes to durable storage before returning
	Flush bool
}

// File is an open file handle
type File interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64, opt WriteOption) (int, error)
	SetSize(size int64) error
	Size() (int64, error)
	Close() error
}

// FS is the filesystem abstraction
type FS interface {
	// Create creates name with the given length, failing if it already exists
	Create(name string, size int64) error
	// Delete removes name
	Delete(name string) error
	// Open opens an existing file
	Open(name string, mode Mode) (File, error)
	// Exists reports whether name exists
	Exists(name string) bool
}

// ReadFile reads at most limit bytes from the start of name.
// truncated reports whether the file held more than limit bytes.
func ReadFile(fsys FS, name string, limit int) (data []byte, truncated bool, err error) {
	f, err := fsys.Open(name, ModeRead)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, limit+1)
	n, err := f.ReadAt(buf, 0)
	if n == 0 && err != nil && !isEOF(err) {
		return nil, false, err
	}
	if n > limit {
		return buf[:limit], true, nil
	}
	return buf[:n], false, nil
}
