//go:build !linux

package slot

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by OpenMapped on platforms without shared mappings
var ErrUnsupported = errors.New("slot: mapped slot not supported on this platform")

// Mapped is unavailable on this platform
type Mapped struct{}

// OpenMapped always fails on this platform
func OpenMapped(path string, size int) (*Mapped, error) {
	return nil, fmt.Errorf("open slot %s: %w", path, ErrUnsupported)
}

// Write always fails
func (m *Mapped) Write(p []byte) error {
	return ErrUnsupported
}

// Sync is a no-op
func (m *Mapped) Sync() error {
	return nil
}

// Close is a no-op
func (m *Mapped) Close() error {
	return nil
}
