package telemetry

import (
	"github.com/younwookim/tickhook/internal/application/tracking"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logchan"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

const simTraceHeader = "tick,pos_x,pos_y,vel_x,vel_y,state,state_ticks,secondary_id,gravity,terminal_vel,buttons\n"

// ButtonSource reports the effective buttons of the last input request
type ButtonSource interface {
	Buttons() uint64
}

// ButtonsFunc adapts a function to ButtonSource
type ButtonsFunc func() uint64

// Buttons implements ButtonSource
func (f ButtonsFunc) Buttons() uint64 {
	return f()
}

// SimTraceOptions configure a SimTrace
type SimTraceOptions struct {
	Registry *tracking.Registry
	Phase    PhaseSource
	// Phases during which ticks are traced
	Phases  []int32
	Space   hostmem.Space
	Check   hostmem.RangeCheck
	Layout  tracking.Layout
	Buttons ButtonSource
}

// SimTrace logs the tracked object every tick while the host is in one of
// the traced phases. It exists only when its marker file is present.
type SimTrace struct {
	opts   SimTraceOptions
	phases map[int32]bool
	ch     *logchan.Channel
}

// Enabled reports whether the trace marker exists
func Enabled(fsys storage.FS, marker string) bool {
	return marker != "" && fsys.Exists(marker)
}

// NewSimTrace creates a trace writing to ch and writes the header
func NewSimTrace(opts SimTraceOptions, ch *logchan.Channel) *SimTrace {
	phases := make(map[int32]bool, len(opts.Phases))
	for _, p := range opts.Phases {
		phases[p] = true
	}
	ch.AppendString(simTraceHeader)
	return &SimTrace{opts: opts, phases: phases, ch: ch}
}

// Name implements plugin.Plugin
func (s *SimTrace) Name() string {
	return "simtrace"
}

// Tick implements plugin.Plugin
func (s *SimTrace) Tick(tick uint32) {
	if !s.phases[s.opts.Phase.Read()] {
		return
	}
	handle, ok := s.opts.Registry.Handle()
	if !ok {
		return
	}
	f := tracking.Read(hostmem.Object{Space: s.opts.Space, Handle: handle, Check: s.opts.Check}, s.opts.Layout)

	var buttons uint64
	if s.opts.Buttons != nil {
		buttons = s.opts.Buttons.Buttons()
	}
	s.ch.Appendf("%d,%.4f,%.4f,%.4f,%.4f,%d,%d,%d,%.6f,%.4f,%#x\n",
		tick, f.PosX, f.PosY, f.VelX, f.VelY,
		f.State, f.StateTicks, f.SecondaryID,
		f.Gravity, f.TerminalVel, buttons)
}
