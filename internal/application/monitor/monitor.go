// Package monitor reads the status slot from outside the host and derives
// what a watcher wants to know: is the host running, are inputs being polled
// and what changed since the last read.
package monitor

import (
	"fmt"
	"strings"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/infrastructure/slot"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// Reading is one decoded snapshot plus what changed since the previous one
type Reading struct {
	Snapshot snapshot.Snapshot
	// Fresh is false when the tick has not advanced since the last reading
	Fresh bool
	// Polling is true when the host polled input since the last reading
	Polling bool
	// First is true for the first reading of a session
	First bool
}

// Monitor polls the status slot
type Monitor struct {
	fsys storage.FS
	name string

	prev    snapshot.Snapshot
	started bool
}

// New creates a monitor for the slot stored as name
func New(fsys storage.FS, name string) *Monitor {
	return &Monitor{fsys: fsys, name: name}
}

// Read reads and decodes the slot. A torn or short record is an error; the
// next read usually succeeds.
func (m *Monitor) Read() (Reading, error) {
	data, err := slot.Read(m.fsys, m.name, snapshot.Size)
	if err != nil {
		return Reading{}, err
	}
	s, err := snapshot.Decode(data)
	if err != nil {
		return Reading{}, err
	}

	r := Reading{Snapshot: s, First: !m.started}
	if m.started {
		r.Fresh = s.Tick != m.prev.Tick
		r.Polling = s.PollCount > m.prev.PollCount
	}
	m.prev = s
	m.started = true
	return r, nil
}

// Flags lists the set boolean flags of s
func Flags(s snapshot.Snapshot) []string {
	var flags []string
	if s.IsDead {
		flags = append(flags, "DEAD")
	}
	if s.IsGoal {
		flags = append(flags, "GOAL")
	}
	if s.InWater {
		flags = append(flags, "WATER")
	}
	if !s.HasObject {
		flags = append(flags, "NO_OBJECT")
	}
	return flags
}

// Line renders a reading as a single plain-text line
func Line(r Reading) string {
	s := r.Snapshot
	polls := ""
	if !r.First {
		polls = " INPUTS_OFF"
		if r.Polling {
			polls = " INPUTS_ON"
		}
	}
	flags := ""
	if f := Flags(s); len(f) > 0 {
		flags = " [" + strings.Join(f, ",") + "]"
	}
	return fmt.Sprintf("t=%6d %-9s%s | ph=%2d st=%3d pw=%d | x=%7.1f y=%6.1f | vx=%6.2f vy=%6.2f | stt=%4d g=%5.2f%s",
		s.Tick, state.Mode(s.Mode), polls, s.Phase, s.State, s.SecondaryID,
		s.PosX, s.PosY, s.VelX, s.VelY, s.StateTicks, s.Gravity, flags)
}

// Fields renders s as ordered name/value pairs
func Fields(s snapshot.Snapshot) [][2]string {
	theme := "?"
	if s.Theme != snapshot.ThemeUnknown {
		theme = fmt.Sprintf("%d", s.Theme)
	}
	style := "?"
	if s.GameStyle != 0 {
		style = fmt.Sprintf("%#x", s.GameStyle)
	}
	return [][2]string{
		{"tick", fmt.Sprintf("%d", s.Tick)},
		{"mode", state.Mode(s.Mode).String()},
		{"polls", fmt.Sprintf("%d", s.PollCount)},
		{"phase", fmt.Sprintf("%d", s.Phase)},
		{"state", fmt.Sprintf("%d (%d ticks)", s.State, s.StateTicks)},
		{"secondary", fmt.Sprintf("%d", s.SecondaryID)},
		{"pos", fmt.Sprintf("%.2f, %.2f", s.PosX, s.PosY)},
		{"vel", fmt.Sprintf("%.3f, %.3f", s.VelX, s.VelY)},
		{"facing", fmt.Sprintf("%d", s.Facing)},
		{"gravity", fmt.Sprintf("%.3f", s.Gravity)},
		{"buffered", fmt.Sprintf("%d", s.BufferedAction)},
		{"flags", strings.Join(Flags(s), ",")},
		{"theme", theme},
		{"style", style},
	}
}

// LiveWriter writes live-input records to the resource name
type LiveWriter struct {
	out slot.Slot
}

// NewLiveWriter recreates the live-input resource
func NewLiveWriter(fsys storage.FS, name string) (*LiveWriter, error) {
	out, err := slot.NewFile(fsys, name, replay.LiveRecordSize)
	if err != nil {
		return nil, err
	}
	return &LiveWriter{out: out}, nil
}

// Write writes an already encoded record
func (w *LiveWriter) Write(p []byte) error {
	return w.out.Write(p)
}

// Set writes in as the current live input
func (w *LiveWriter) Set(in replay.Input) error {
	return w.out.Write(replay.EncodeLive(in))
}
