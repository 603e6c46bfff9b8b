package storage

import (
	"errors"
	"io"
	"sync"
)

// ErrInjected is returned by Mem operations that were configured to fail
var ErrInjected = errors.New("storage: injected failure")

// Mem is an in-memory FS. It is safe for concurrent use so that tools
// polling a file can share it with the writer in tests.
type Mem struct {
	mu    sync.Mutex
	files map[string][]byte

	// Fail, when set, makes Open and Create fail for the named files
	fail map[string]bool

	opens  int
	writes int
}

// NewMem creates an empty in-memory FS
func NewMem() *Mem {
	return &Mem{
		files: make(map[string][]byte),
		fail:  make(map[string]bool),
	}
}

// FailOn makes every Create and Open of name fail until cleared
func (m *Mem) FailOn(name string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[name] = fail
}

// Bytes returns a copy of the contents of name
func (m *Mem) Bytes(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[name]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true
}

// Put replaces the contents of name, creating it if needed
func (m *Mem) Put(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.files[name] = buf
}

// Writes returns the number of WriteAt calls made so far
func (m *Mem) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Opens returns the number of successful Open calls made so far
func (m *Mem) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Create creates name with the given length
func (m *Mem) Create(name string, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[name] {
		return ErrInjected
	}
	if _, ok := m.files[name]; ok {
		return errors.New("storage: file exists")
	}
	m.files[name] = make([]byte, size)
	return nil
}

// Delete removes name
func (m *Mem) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return ErrNotExist
	}
	delete(m.files, name)
	return nil
}

// Open opens an existing file
func (m *Mem) Open(name string, mode Mode) (File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[name] {
		return nil, ErrInjected
	}
	if _, ok := m.files[name]; !ok {
		return nil, ErrNotExist
	}
	m.opens++
	return &memFile{fs: m, name: name, mode: mode}, nil
}

// Exists reports whether name exists
func (m *Mem) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

type memFile struct {
	fs     *Mem
	name   string
	mode   Mode
	closed bool
}

func (f *memFile) data() ([]byte, error) {
	if f.closed {
		return nil, errors.New("storage: file closed")
	}
	data, ok := f.fs.files[f.name]
	if !ok {
		return nil, ErrNotExist
	}
	return data, nil
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	data, err := f.data()
	if err != nil {
		return 0, err
	}
	if off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *memFile) WriteAt(p []byte, off int64, _ WriteOption) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.mode&ModeWrite == 0 {
		return 0, errors.New("storage: file not open for writing")
	}
	data, err := f.data()
	if err != nil {
		return 0, err
	}
	end := off + int64(len(p))
	if end > int64(len(data)) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[off:], p)
	f.fs.files[f.name] = data
	f.fs.writes++
	return len(p), nil
}

func (f *memFile) SetSize(size int64) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	data, err := f.data()
	if err != nil {
		return err
	}
	resized := make([]byte, size)
	copy(resized, data)
	f.fs.files[f.name] = resized
	return nil
}

func (f *memFile) Size() (int64, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	data, err := f.data()
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

func (f *memFile) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	f.closed = true
	return nil
}
