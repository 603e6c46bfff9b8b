package hostmem

import (
	"fmt"
	"sort"
	"sync"
)

// Image is an in-memory address space made of disjoint regions. The demo
// host keeps its objects in an Image so the core can instrument it through
// the same Space interface it would use against a real process.
type Image struct {
	mu      sync.RWMutex
	regions []region
	base    uint64
}

type region struct {
	start uint64
	data  []byte
}

func (r region) end() uint64 {
	return r.start + uint64(len(r.data))
}

// NewImage creates an empty image whose main module loads at base
func NewImage(base uint64) *Image {
	return &Image{base: base}
}

// MainModuleBase returns the module base the image was created with
func (m *Image) MainModuleBase() (uint64, error) {
	return m.base, nil
}

// Map adds a zeroed region of size bytes at start
func (m *Image) Map(start uint64, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := start + uint64(size)
	for _, r := range m.regions {
		if start < r.end() && r.start < end {
			return fmt.Errorf("region %#x-%#x overlaps %#x-%#x", start, end, r.start, r.end())
		}
	}
	m.regions = append(m.regions, region{start: start, data: make([]byte, size)})
	sort.Slice(m.regions, func(i, j int) bool { return m.regions[i].start < m.regions[j].start })
	return nil
}

// Unmap removes the region starting at start. Later accesses fail with
// ErrUnmapped, which is how tests model a dangling handle.
func (m *Image) Unmap(start uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.regions {
		if r.start == start {
			m.regions = append(m.regions[:i], m.regions[i+1:]...)
			return
		}
	}
}

func (m *Image) find(addr uint64, n int) ([]byte, bool) {
	for _, r := range m.regions {
		if addr >= r.start && addr+uint64(n) <= r.end() {
			off := addr - r.start
			return r.data[off : off+uint64(n)], true
		}
	}
	return nil, false
}

// ReadAt copies len(p) bytes at addr into p
func (m *Image) ReadAt(p []byte, addr uint64) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.find(addr, len(p))
	if !ok {
		return fmt.Errorf("read %d bytes at %#x: %w", len(p), addr, ErrUnmapped)
	}
	copy(p, src)
	return nil
}

// WriteAt copies p to addr
func (m *Image) WriteAt(p []byte, addr uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst, ok := m.find(addr, len(p))
	if !ok {
		return fmt.Errorf("write %d bytes at %#x: %w", len(p), addr, ErrUnmapped)
	}
	copy(dst, p)
	return nil
}
