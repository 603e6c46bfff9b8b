package slot

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a slot backed by a shared memory mapping of a file. Writes are a
// plain copy into the mapping; the kernel writes pages back on its own.
type Mapped struct {
	f    *os.File
	data []byte
}

// OpenMapped creates or truncates path to size bytes and maps it shared
func OpenMapped(path string, size int) (*Mapped, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open slot %s: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to size slot %s: %w", path, err)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to map slot %s: %w", path, err)
	}
	return &Mapped{f: f, data: data}, nil
}

// Write copies p to the start of the mapping
func (m *Mapped) Write(p []byte) error {
	if m.data == nil {
		return fmt.Errorf("slot %s: closed", m.f.Name())
	}
	if len(p) > len(m.data) {
		return fmt.Errorf("slot %s: record of %d bytes exceeds %d", m.f.Name(), len(p), len(m.data))
	}
	copy(m.data, p)
	return nil
}

// Sync flushes the mapping to the file synchronously
func (m *Mapped) Sync() error {
	if m.data == nil {
		return nil
	}
	return unix.Msync(m.data, unix.MS_SYNC)
}

// Close unmaps and closes the file
func (m *Mapped) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}
