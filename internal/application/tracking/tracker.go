package tracking

import (
	"github.com/younwookim/tickhook/internal/application/plugin"
	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logchan"
)

const (
	statesHeader = "tick,old_state,new_state,handle,pos_x,pos_y,vel_x,vel_y\n"
	fieldsHeader = "tick,state,state_ticks,secondary_id,pos_x,pos_y,vel_x,vel_y,in_water\n"
)

// Tracker observes state transitions of the tracked object. It feeds the
// registry and the mode machine and logs each transition.
type Tracker struct {
	reg     *Registry
	machine *state.Machine
	space   hostmem.Space
	check   hostmem.RangeCheck
	layout  Layout
	clock   plugin.Clock
	states  *logchan.Channel
}

// TrackerOptions configure a Tracker
type TrackerOptions struct {
	Registry *Registry
	Machine  *state.Machine
	Space    hostmem.Space
	Check    hostmem.RangeCheck
	Layout   Layout
	Clock    plugin.Clock
	// States receives one line per transition; it may be nil
	States *logchan.Channel
}

// NewTracker creates a tracker and writes the transition log header
func NewTracker(opts TrackerOptions) *Tracker {
	if opts.States != nil {
		opts.States.AppendString(statesHeader)
	}
	return &Tracker{
		reg:     opts.Registry,
		machine: opts.Machine,
		space:   opts.Space,
		check:   opts.Check,
		layout:  opts.Layout,
		clock:   opts.Clock,
		states:  opts.States,
	}
}

// Wrap is a hook.Wrapper for the host's state-change function, whose
// arguments are (object handle, new state id)
func (t *Tracker) Wrap(orig hook.Func) hook.Func {
	return func(args ...uint64) uint64 {
		handle := hook.Arg(args, 0)
		to := uint32(hook.Arg(args, 1))

		obj := hostmem.Object{Space: t.space, Handle: handle, Check: t.check}
		from := obj.U32(t.layout.CurState)

		ret := orig(args...)

		t.Observe(handle, from, to)
		return ret
	}
}

// Observe records a transition of handle from one state to another
func (t *Tracker) Observe(handle uint64, from, to uint32) {
	if t.states != nil {
		obj := hostmem.Object{Space: t.space, Handle: handle, Check: t.check}
		s := Read(obj, t.layout)
		t.states.Appendf("%d,%d,%d,%#x,%.2f,%.2f,%.4f,%.4f\n",
			t.clock.Current(), from, to, handle, s.PosX, s.PosY, s.VelX, s.VelY)
	}

	t.reg.Observe(handle, to)
	t.machine.Observe(from, to)
}

// FieldSampler logs the tracked object's fields every interval ticks while a
// handle is present
type FieldSampler struct {
	reg      *Registry
	space    hostmem.Space
	check    hostmem.RangeCheck
	layout   Layout
	interval uint32
	fields   *logchan.Channel
}

// NewFieldSampler creates a sampler and writes the field log header
func NewFieldSampler(reg *Registry, space hostmem.Space, check hostmem.RangeCheck, layout Layout, interval uint32, fields *logchan.Channel) *FieldSampler {
	if interval == 0 {
		interval = 10
	}
	fields.AppendString(fieldsHeader)
	return &FieldSampler{
		reg:      reg,
		space:    space,
		check:    check,
		layout:   layout,
		interval: interval,
		fields:   fields,
	}
}

// Name implements plugin.Plugin
func (f *FieldSampler) Name() string {
	return "fields"
}

// Tick implements plugin.Plugin
func (f *FieldSampler) Tick(tick uint32) {
	handle, ok := f.reg.Handle()
	if !ok || tick%f.interval != 0 {
		return
	}
	s := Read(hostmem.Object{Space: f.space, Handle: handle, Check: f.check}, f.layout)
	f.fields.Appendf("%d,%d,%d,%d,%.2f,%.2f,%.4f,%.4f,%d\n",
		tick, s.State, s.StateTicks, s.SecondaryID, s.PosX, s.PosY, s.VelX, s.VelY, s.InWater)
}
