// Package telemetry holds per-tick loggers that are independent of the
// snapshot: the phase-change log and the optional simulation trace.
package telemetry

import "github.com/younwookim/tickhook/internal/infrastructure/logchan"

// PhaseSource reads the host's phase value, -1 when unknown
type PhaseSource interface {
	Read() int32
}

// PhaseLogger writes one line whenever the host phase changes
type PhaseLogger struct {
	src  PhaseSource
	ch   *logchan.Channel
	last int32
}

// NewPhaseLogger creates a phase logger and writes the log header
func NewPhaseLogger(src PhaseSource, ch *logchan.Channel) *PhaseLogger {
	ch.AppendString("tick,old_phase,new_phase\n")
	return &PhaseLogger{src: src, ch: ch, last: -1}
}

// Name implements plugin.Plugin
func (p *PhaseLogger) Name() string {
	return "phase"
}

// Tick implements plugin.Plugin
func (p *PhaseLogger) Tick(tick uint32) {
	phase := p.src.Read()
	if phase == p.last {
		return
	}
	p.ch.Appendf("%d,%d,%d\n", tick, p.last, phase)
	p.last = phase
}

// Last returns the most recently observed phase
func (p *PhaseLogger) Last() int32 {
	return p.last
}
