package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir is an FS rooted at a directory on the host filesystem
type Dir struct {
	root string
}

// NewDir creates an FS rooted at root, creating the directory if needed
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory the FS is rooted at
func (d *Dir) Root() string {
	return d.root
}

func (d *Dir) path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

// Create creates name with the given length
func (d *Dir) Create(name string, size int64) error {
	f, err := os.OpenFile(d.path(name), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if size > 0 {
		if err := f.Truncate(size); err != nil {
			return fmt.Errorf("failed to size %s: %w", name, err)
		}
	}
	return nil
}

// Delete removes name
func (d *Dir) Delete(name string) error {
	err := os.Remove(d.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

// Open opens an existing file
func (d *Dir) Open(name string, mode Mode) (File, error) {
	flag := os.O_RDONLY
	if mode&ModeWrite != 0 {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(d.path(name), flag, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return &osFile{f: f}, nil
}

// Exists reports whether name exists
func (d *Dir) Exists(name string) bool {
	_, err := os.Stat(d.path(name))
	return err == nil
}

type osFile struct {
	f *os.File
}

func (o *osFile) ReadAt(p []byte, off int64) (int, error) {
	return o.f.ReadAt(p, off)
}

func (o *osFile) WriteAt(p []byte, off int64, opt WriteOption) (int, error) {
	n, err := o.f.WriteAt(p, off)
	if err != nil {
		return n, err
	}
	if opt.Flush {
		if err := o.f.Sync(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (o *osFile) SetSize(size int64) error {
	return o.f.Truncate(size)
}

func (o *osFile) Size() (int64, error) {
	st, err := o.f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

func (o *osFile) Close() error {
	return o.f.Close()
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
