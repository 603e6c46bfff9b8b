package snapshot

import "github.com/younwookim/tickhook/internal/infrastructure/hostmem"

// PhaseReader reads the host's own phase value through a pointer chain that
// starts at a global in the main module. The chain is not stable across host
// states, so every read may fail.
type PhaseReader struct {
	space   hostmem.Space
	root    uint64
	offsets []uint64
	check   hostmem.RangeCheck
}

// NewPhaseReader creates a reader for the chain rooted at base+global
func NewPhaseReader(space hostmem.Space, base, global uint64, offsets []uint64, check hostmem.RangeCheck) *PhaseReader {
	return &PhaseReader{
		space:   space,
		root:    base + global,
		offsets: offsets,
		check:   check,
	}
}

// Read returns the phase, or PhaseUnknown if any link of the chain fails
func (p *PhaseReader) Read() int32 {
	if p == nil || p.root == 0 {
		return PhaseUnknown
	}
	v, ok := hostmem.ReadChainI32(p.space, p.root, p.offsets, p.check)
	if !ok {
		return PhaseUnknown
	}
	return v
}
