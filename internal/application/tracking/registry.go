// Package tracking follows the host object of interest: it records the last
// handle seen in a state transition and logs transitions and periodic field
// samples to telemetry channels.
package tracking

// NoState is the last-state value before any transition has been observed
const NoState uint32 = 0xFFFFFFFF

// Registry holds the most recently seen tracked handle. The handle is never
// verified: it may dangle after a host scene change until the next transition
// replaces it.
type Registry struct {
	handle      uint64
	present     bool
	lastState   uint32
	transitions uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{lastState: NoState}
}

// Observe records a transition of handle into state
func (r *Registry) Observe(handle uint64, state uint32) {
	r.handle = handle
	r.present = handle != 0
	r.lastState = state
	r.transitions++
}

// Handle returns the tracked handle and whether one is present
func (r *Registry) Handle() (uint64, bool) {
	return r.handle, r.present
}

// Present reports whether a handle has been seen
func (r *Registry) Present() bool {
	return r.present
}

// LastState returns the state id of the most recent transition
func (r *Registry) LastState() uint32 {
	return r.lastState
}

// Transitions returns the number of transitions observed
func (r *Registry) Transitions() uint64 {
	return r.transitions
}
