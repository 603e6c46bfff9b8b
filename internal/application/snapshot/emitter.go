package snapshot

import (
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/application/tracking"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/slot"
)

// ModeSource reports the classified host mode
type ModeSource interface {
	Mode() state.Mode
}

// PollCounter reports how many times the host has requested input
type PollCounter interface {
	PollCount() uint32
}

// CourseInfo reports metadata captured from the host's course data
type CourseInfo interface {
	Theme() (uint8, bool)
	GameStyle() (uint32, bool)
}

// Options configure an Emitter
type Options struct {
	Slot     slot.Slot
	Mode     ModeSource
	Polls    PollCounter
	Registry *tracking.Registry
	Phase    *PhaseReader
	// Course may be nil when no course sniffer is installed
	Course CourseInfo

	Space  hostmem.Space
	Check  hostmem.RangeCheck
	Layout tracking.Layout

	DeadStates []uint32
	GoalStates []uint32
}

// Emitter writes one snapshot per tick
type Emitter struct {
	opts  Options
	dead  map[uint32]bool
	goal  map[uint32]bool
	buf   []byte
	last  Snapshot
	fails int
	log   *zap.Logger
}

// NewEmitter creates an emitter
func NewEmitter(opts Options) *Emitter {
	return &Emitter{
		opts: opts,
		dead: toSet(opts.DeadStates),
		goal: toSet(opts.GoalStates),
		buf:  make([]byte, 0, Size),
		log:  logging.Named("snapshot"),
	}
}

// Name implements plugin.Plugin
func (e *Emitter) Name() string {
	return "snapshot"
}

// Tick implements plugin.Plugin
func (e *Emitter) Tick(tick uint32) {
	s := e.Assemble(tick)
	e.last = s

	b, _ := s.AppendBinary(e.buf[:0])
	if err := e.opts.Slot.Write(b); err != nil {
		e.fails++
		// one line per failure burst is enough
		if e.fails == 1 {
			e.log.Debug("status write failed", zap.Uint32("tick", tick), zap.Error(err))
		}
		return
	}
	e.fails = 0
}

// Assemble builds the snapshot for tick without writing it
func (e *Emitter) Assemble(tick uint32) Snapshot {
	s := Snapshot{
		Tick:  tick,
		Phase: e.opts.Phase.Read(),
		Theme: ThemeUnknown,
	}
	if e.opts.Mode != nil {
		s.Mode = uint32(e.opts.Mode.Mode())
	}
	if e.opts.Polls != nil {
		s.PollCount = e.opts.Polls.PollCount()
	}
	if e.opts.Course != nil {
		if theme, ok := e.opts.Course.Theme(); ok {
			s.Theme = theme
		}
		if style, ok := e.opts.Course.GameStyle(); ok {
			s.GameStyle = style
		}
	}

	handle, ok := e.opts.Registry.Handle()
	if !ok {
		return s
	}
	obj := hostmem.Object{Space: e.opts.Space, Handle: handle, Check: e.opts.Check}
	f := tracking.Read(obj, e.opts.Layout)

	s.HasObject = true
	s.PosX, s.PosY = f.PosX, f.PosY
	s.VelX, s.VelY = f.VelX, f.VelY
	s.State = f.State
	s.StateTicks = f.StateTicks
	s.SecondaryID = f.SecondaryID
	s.InWater = f.InWater != 0
	s.IsDead = e.dead[f.State]
	s.IsGoal = e.goal[f.State]
	s.Facing = f.Facing
	s.Gravity = f.Gravity
	s.BufferedAction = f.BufferedAction
	return s
}

// Last returns the most recently emitted snapshot
func (e *Emitter) Last() Snapshot {
	return e.last
}

func toSet(ids []uint32) map[uint32]bool {
	m := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
