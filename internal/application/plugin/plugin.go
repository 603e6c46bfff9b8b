// Package plugin defines the per-tick unit of work driven by the scheduler.
//
// Each telemetry or control feature (field sampler, snapshot emitter, phase
// logger, sim trace) implements Plugin and is registered with the scheduler
// in a fixed order.
package plugin

// Plugin is invoked once per host frame
type Plugin interface {
	// Name identifies the plugin in diagnostics
	Name() string

	// Tick runs the plugin's per-frame work for tick.
	// It must not block and must not return errors: failures are absorbed.
	Tick(tick uint32)
}

// Clock exposes the current tick to components that are not plugins
type Clock interface {
	Current() uint32
}

// Func adapts a function to the Plugin interface
type Func struct {
	ID string
	Fn func(tick uint32)
}

// Name implements Plugin
func (f Func) Name() string {
	return f.ID
}

// Tick implements Plugin
func (f Func) Tick(tick uint32) {
	f.Fn(tick)
}
