// Package slot provides the single fixed-offset record the core overwrites
// every tick. Readers poll it and may observe a torn record.
package slot

import (
	"errors"
	"fmt"

	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// Slot is overwritten in place at offset 0
type Slot interface {
	Write(p []byte) error
	Close() error
}

// File is a slot backed by a storage file. Every write opens the file,
// writes at offset 0 with flush and closes it again.
type File struct {
	fsys storage.FS
	name string
	size int64
}

// NewFile recreates name with size bytes and returns a slot over it
func NewFile(fsys storage.FS, name string, size int) (*File, error) {
	if err := fsys.Delete(name); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	if err := fsys.Create(name, int64(size)); err != nil {
		return nil, fmt.Errorf("failed to create slot %s: %w", name, err)
	}
	return &File{fsys: fsys, name: name, size: int64(size)}, nil
}

// Write overwrites the record
func (s *File) Write(p []byte) error {
	f, err := s.fsys.Open(s.name, storage.ModeWrite)
	if err != nil {
		return fmt.Errorf("open slot %s: %w", s.name, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteAt(p, 0, storage.WriteOption{Flush: true}); err != nil {
		return fmt.Errorf("write slot %s: %w", s.name, err)
	}
	return nil
}

// Close is a no-op: the file is not held open between writes
func (s *File) Close() error {
	return nil
}

// Lazy is a File slot whose file is created by the first write that
// succeeds. It stands in when the file could not be created up front.
type Lazy struct {
	fsys storage.FS
	name string
	size int
	file *File
}

// NewLazy returns a slot that creates name on demand
func NewLazy(fsys storage.FS, name string, size int) *Lazy {
	return &Lazy{fsys: fsys, name: name, size: size}
}

// Write creates the file when needed, then overwrites the record. A file
// removed underneath the slot is created again on the next write.
func (s *Lazy) Write(p []byte) error {
	if s.file == nil {
		f, err := NewFile(s.fsys, s.name, s.size)
		if err != nil {
			return err
		}
		s.file = f
	}
	if err := s.file.Write(p); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			s.file = nil
		}
		return err
	}
	return nil
}

// Ready reports whether the file has been created
func (s *Lazy) Ready() bool {
	return s.file != nil
}

// Close is a no-op
func (s *Lazy) Close() error {
	return nil
}

// Read returns the current record of name, at most size bytes
func Read(fsys storage.FS, name string, size int) ([]byte, error) {
	data, _, err := storage.ReadFile(fsys, name, size)
	if err != nil {
		return nil, err
	}
	return data, nil
}
