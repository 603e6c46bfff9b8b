// Package core wires every subsystem of the instrumentation core together.
//
// New builds the subsystems from configuration and explicit dependencies;
// nothing is kept in package globals. Install then wraps the four host
// functions the core listens on.
package core

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/course"
	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/scheduler"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/application/telemetry"
	"github.com/younwookim/tickhook/internal/application/tracking"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logchan"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/slot"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// Deps are the host collaborators the core runs against
type Deps struct {
	// FS holds log channels, the script, the live-input file and markers
	FS storage.FS
	// Space is the host address space
	Space hostmem.Space
	// Base resolves the host main module base. When nil, Space is used if it
	// implements hostmem.BaseResolver.
	Base hostmem.BaseResolver
	// Slot overrides the status slot built from configuration
	Slot slot.Slot
}

// Core owns every subsystem of one host session
type Core struct {
	cfg   *config.Config
	space hostmem.Space
	check hostmem.RangeCheck
	npad  config.NpadLayout

	Channels  *logchan.Set
	Registry  *tracking.Registry
	Machine   *state.Machine
	Engine    *replay.Engine
	Recorder  *replay.Recorder
	Tracker   *tracking.Tracker
	Sampler   *tracking.FieldSampler
	Phase     *snapshot.PhaseReader
	PhaseLog  *telemetry.PhaseLogger
	SimTrace  *telemetry.SimTrace
	Course    *course.Sniffer
	Emitter   *snapshot.Emitter
	Scheduler *scheduler.Scheduler
	Slot      slot.Slot

	log *zap.Logger
}

// New builds a core. Only missing config or collaborators are returned as
// errors; storage failures degrade and are logged.
func New(cfg *config.Config, deps Deps) (*Core, error) {
	if cfg == nil || cfg.Core == nil || cfg.Layout == nil {
		return nil, errors.New("core: incomplete config")
	}
	if deps.FS == nil || deps.Space == nil {
		return nil, errors.New("core: FS and Space are required")
	}

	log := logging.Named("core")
	cc, lc := cfg.Core, cfg.Layout
	check := hostmem.RangeCheck(lc.AddressRange.Range().Check)
	objLayout := tracking.LayoutFromConfig(lc.Object)

	c := &Core{
		cfg:      cfg,
		space:    deps.Space,
		check:    check,
		npad:     lc.Npad,
		Channels: logchan.NewSet(deps.FS, cc.LogCapacity),
		Registry: tracking.NewRegistry(),
		Machine:  state.NewMachine(),
		log:      log,
	}
	c.Scheduler = scheduler.New(c.Channels, cc.FlushInterval)

	c.Phase = newPhaseReader(deps, lc, check, log)

	if cc.Record.Enabled {
		c.Recorder = replay.NewRecorder(c.Channels.Open(cc.Channels.Record))
	}
	c.Engine = replay.NewEngine(replay.EngineOptions{
		FS:           deps.FS,
		ScriptPath:   cc.Script.Path,
		MaxBytes:     cc.Script.MaxBytes,
		MaxKeyframes: cc.Script.MaxKeyframes,
		LivePath:     cc.Live.Path,
		PollInterval: cc.Live.PollInterval,
		Recorder:     c.Recorder,
	})

	c.Tracker = tracking.NewTracker(tracking.TrackerOptions{
		Registry: c.Registry,
		Machine:  c.Machine,
		Space:    deps.Space,
		Check:    check,
		Layout:   objLayout,
		Clock:    c.Scheduler,
		States:   c.Channels.Open(cc.Channels.States),
	})
	c.Sampler = tracking.NewFieldSampler(c.Registry, deps.Space, check, objLayout,
		cc.FieldSampleInterval, c.Channels.Open(cc.Channels.Fields))
	c.PhaseLog = telemetry.NewPhaseLogger(c.Phase, c.Channels.Open(cc.Channels.Phase))
	c.Course = course.NewSniffer(deps.Space, course.LayoutFromConfig(lc.Course), c.Channels.Open(cc.Channels.Course))

	if telemetry.Enabled(deps.FS, cc.SimTrace.Marker) {
		c.SimTrace = telemetry.NewSimTrace(telemetry.SimTraceOptions{
			Registry: c.Registry,
			Phase:    c.Phase,
			Phases:   lc.Phase.TracePhases,
			Space:    deps.Space,
			Check:    check,
			Layout:   objLayout,
			Buttons:  telemetry.ButtonsFunc(func() uint64 { return c.Engine.LastInput().Buttons }),
		}, c.Channels.Open(cc.Channels.SimTrace))
		log.Info("sim trace enabled", zap.String("marker", cc.SimTrace.Marker))
	}

	s, err := openSlot(deps, cc.Status)
	if err != nil {
		log.Warn("status slot unavailable, creating on write",
			zap.String("path", cc.Status.Path), zap.Error(err))
		s = slot.NewLazy(deps.FS, cc.Status.Path, snapshot.Size)
	}
	c.Slot = s

	c.Emitter = snapshot.NewEmitter(snapshot.Options{
		Slot:       s,
		Mode:       c.Machine,
		Polls:      c.Engine,
		Registry:   c.Registry,
		Phase:      c.Phase,
		Course:     c.Course,
		Space:      deps.Space,
		Check:      check,
		Layout:     objLayout,
		DeadStates: lc.States.Dead,
		GoalStates: lc.States.Goal,
	})

	// telemetry first, then the snapshot that summarises the tick
	c.Scheduler.Register(c.Sampler, c.PhaseLog)
	if c.SimTrace != nil {
		c.Scheduler.Register(c.SimTrace)
	}
	c.Scheduler.Register(c.Emitter)

	log.Info("core ready",
		zap.String("input", c.Engine.Source().String()),
		zap.Int("channels", len(c.Channels.Channels())),
		zap.String("status", cc.Status.Path))
	return c, nil
}

func newPhaseReader(deps Deps, lc *config.LayoutConfig, check hostmem.RangeCheck, log *zap.Logger) *snapshot.PhaseReader {
	resolver := deps.Base
	if resolver == nil {
		if r, ok := deps.Space.(hostmem.BaseResolver); ok {
			resolver = r
		}
	}
	if resolver == nil {
		log.Warn("no module base resolver, phase unavailable")
		return nil
	}
	base, err := resolver.MainModuleBase()
	if err != nil {
		log.Warn("module base unresolved, phase unavailable", zap.Error(err))
		return nil
	}
	return snapshot.NewPhaseReader(deps.Space, base, uint64(lc.Phase.Global), config.Uint64s(lc.Phase.Offsets), check)
}

func openSlot(deps Deps, sc config.StatusConfig) (slot.Slot, error) {
	if deps.Slot != nil {
		return deps.Slot, nil
	}
	switch sc.Backend {
	case "mmap":
		dir, ok := deps.FS.(*storage.Dir)
		if !ok {
			return nil, errors.New("core: mmap status slot needs a directory-backed FS")
		}
		return slot.OpenMapped(filepath.Join(dir.Root(), filepath.FromSlash(sc.Path)), snapshot.Size)
	default:
		return slot.NewFile(deps.FS, sc.Path, snapshot.Size)
	}
}

// Install wraps the host's frame, state-change, input and file-write
// functions. A symbol that cannot be wrapped is logged and skipped; the
// error lists every failure.
func (c *Core) Install(ic hook.Interceptor) error {
	sym := c.cfg.Layout.Symbols
	hooks := []struct {
		symbol string
		wrap   hook.Wrapper
	}{
		{sym.Frame, c.Scheduler.Wrap},
		{sym.ChangeState, c.Tracker.Wrap},
		{sym.Npad, c.WrapInput},
		{sym.WriteFile, c.Course.Wrap},
	}

	var errs []error
	for _, h := range hooks {
		if err := ic.Install(h.symbol, h.wrap); err != nil {
			c.log.Warn("hook not installed", zap.String("symbol", h.symbol), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		c.log.Debug("hook installed", zap.String("symbol", h.symbol))
	}
	return errors.Join(errs...)
}

// Tick runs one frame without a host frame hook
func (c *Core) Tick() {
	c.Scheduler.Tick()
}

// Close flushes every channel and releases the status slot
func (c *Core) Close() error {
	c.Channels.FlushAll()
	return c.Slot.Close()
}
