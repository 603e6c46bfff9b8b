package replay

import (
	"errors"

	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// Source is where injected input comes from. It is chosen once at startup.
type Source int

const (
	SourceLive Source = iota
	SourceScript
)

// String returns the string representation of the source
func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceScript:
		return "script"
	default:
		return "unknown"
	}
}

// EngineOptions configure an Engine
type EngineOptions struct {
	FS           storage.FS
	ScriptPath   string
	MaxBytes     int
	MaxKeyframes int
	LivePath     string
	PollInterval uint32
	// Recorder, when set, receives every effective input
	Recorder *Recorder
}

// Engine merges injected input into the host's real input
type Engine struct {
	source   Source
	player   *Player
	live     *LivePoller
	recorder *Recorder
	polls    uint32
	last     Input
	log      *zap.Logger
}

// NewEngine loads the script if one exists and falls back to live input
// otherwise. A script that fails to load for any reason means live mode.
func NewEngine(opts EngineOptions) *Engine {
	log := logging.Named("replay")
	e := &Engine{recorder: opts.Recorder, log: log}

	s, err := LoadScript(opts.FS, opts.ScriptPath, opts.MaxBytes, opts.MaxKeyframes)
	switch {
	case err == nil:
		e.source = SourceScript
		e.player = NewPlayer(s)
		log.Info("script loaded",
			zap.String("path", opts.ScriptPath),
			zap.Int("keyframes", len(s.Keyframes)),
			zap.Bool("hasEnd", s.HasEnd))
		if s.Reordered {
			log.Warn("script keyframes out of order, sorted by tick", zap.String("path", opts.ScriptPath))
		}
		if len(s.Skipped) > 0 {
			log.Warn("script lines skipped", zap.Ints("lines", s.Skipped))
		}
		if s.Truncated {
			log.Warn("script truncated at read or keyframe limit", zap.String("path", opts.ScriptPath))
		}
	case errors.Is(err, ErrNoScript):
		log.Info("no script, using live input", zap.String("live", opts.LivePath))
	default:
		log.Warn("script unreadable, using live input", zap.Error(err))
	}

	if e.source == SourceLive {
		e.live = NewLivePoller(opts.FS, opts.LivePath, opts.PollInterval, log)
	}
	return e
}

// Apply is called every time the host requests input. It returns the input
// the host should see for tick.
func (e *Engine) Apply(tick uint32, real Input) Input {
	ins := []Input{real}
	e.ApplyAll(tick, ins)
	return ins[0]
}

// ApplyAll handles one input request that returns several controller
// records, merging the injected input into each in place. It counts as a
// single poll; the first record is the one recorded.
func (e *Engine) ApplyAll(tick uint32, ins []Input) {
	e.polls++

	if inj, ok := e.injected(tick); ok {
		for i := range ins {
			ins[i] = Merge(ins[i], inj)
		}
	}

	if len(ins) == 0 {
		return
	}
	e.last = ins[0]
	if e.recorder != nil {
		e.recorder.Record(tick, ins[0])
	}
}

func (e *Engine) injected(tick uint32) (Input, bool) {
	switch e.source {
	case SourceScript:
		return e.player.Advance(tick)
	case SourceLive:
		return e.live.Poll(tick)
	}
	return Input{}, false
}

// LastInput returns the effective input of the most recent request
func (e *Engine) LastInput() Input {
	return e.last
}

// PollCount returns how many times input has been requested
func (e *Engine) PollCount() uint32 {
	return e.polls
}

// Source returns the input source chosen at startup
func (e *Engine) Source() Source {
	return e.source
}

// Overriding reports whether injected input is still being applied
func (e *Engine) Overriding() bool {
	if e.source == SourceScript {
		return e.player.Active()
	}
	return true
}

// Player returns the script player, or nil in live mode
func (e *Engine) Player() *Player {
	return e.player
}
