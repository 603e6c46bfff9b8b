// Package scheduler drives the core once per host frame.
//
// The host's frame function is wrapped so that after the original runs, every
// registered plugin sees the current tick in registration order, log channels
// are flushed on every flush interval, and the tick counter advances.
package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/plugin"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
)

// DefaultFlushInterval flushes log channels every 300 ticks
const DefaultFlushInterval = 300

// Flusher flushes buffered telemetry
type Flusher interface {
	FlushAll()
}

// Scheduler owns the tick counter
type Scheduler struct {
	tick          uint32
	plugins       []plugin.Plugin
	flusher       Flusher
	flushInterval uint32
	panics        map[string]int
	log           *zap.Logger
}

// New creates a scheduler. flusher may be nil.
func New(flusher Flusher, flushInterval uint32) *Scheduler {
	if flushInterval == 0 {
		flushInterval = DefaultFlushInterval
	}
	return &Scheduler{
		flusher:       flusher,
		flushInterval: flushInterval,
		panics:        make(map[string]int),
		log:           logging.Named("scheduler"),
	}
}

// Register appends plugins to the dispatch order
func (s *Scheduler) Register(plugins ...plugin.Plugin) {
	s.plugins = append(s.plugins, plugins...)
}

// Plugins returns the dispatch order
func (s *Scheduler) Plugins() []plugin.Plugin {
	return s.plugins
}

// Current returns the tick counter. It counts completed ticks: during a
// tick it equals the tick being dispatched.
func (s *Scheduler) Current() uint32 {
	return s.tick
}

// Tick runs one frame of work
func (s *Scheduler) Tick() {
	t := s.tick
	for _, p := range s.plugins {
		s.run(p.Name(), func() { p.Tick(t) })
	}
	if s.flusher != nil && t%s.flushInterval == 0 {
		s.run("flush", s.flusher.FlushAll)
	}
	s.tick++
}

// Wrap is a hook.Wrapper for the host's frame function: the original runs
// first, then one tick
func (s *Scheduler) Wrap(orig hook.Func) hook.Func {
	return func(args ...uint64) uint64 {
		ret := orig(args...)
		s.Tick()
		return ret
	}
}

// Panics returns how many times the named plugin has panicked
func (s *Scheduler) Panics(name string) int {
	return s.panics[name]
}

// run calls fn and absorbs any panic so the host frame is never aborted
func (s *Scheduler) run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.panics[name]++
			// log the first panic of each plugin and then every 300th
			if n := s.panics[name]; n == 1 || n%300 == 0 {
				s.log.Error("plugin panicked",
					zap.String("plugin", name),
					zap.Uint32("tick", s.tick),
					zap.Int("count", n),
					zap.String("panic", fmt.Sprint(r)))
			}
		}
	}()
	fn()
}
