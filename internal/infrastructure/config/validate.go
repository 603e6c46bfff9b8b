package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Validate checks the core config for values the core cannot run with
func (c *CoreConfig) Validate() error {
	switch {
	case c.LogCapacity <= 0:
		return fmt.Errorf("logCapacity %d: %w", c.LogCapacity, ErrInvalid)
	case c.FlushInterval == 0:
		return fmt.Errorf("flushInterval must be positive: %w", ErrInvalid)
	case c.FieldSampleInterval == 0:
		return fmt.Errorf("fieldSampleInterval must be positive: %w", ErrInvalid)
	case c.Live.PollInterval == 0:
		return fmt.Errorf("live.pollInterval must be positive: %w", ErrInvalid)
	case c.Script.MaxBytes <= 0 || c.Script.MaxKeyframes <= 0:
		return fmt.Errorf("script limits must be positive: %w", ErrInvalid)
	}
	switch c.Status.Backend {
	case "file", "mmap":
	default:
		return fmt.Errorf("status.backend %q: %w", c.Status.Backend, ErrInvalid)
	}
	return nil
}

// Validate checks the layout for inconsistent ranges and strides
func (l *LayoutConfig) Validate() error {
	if l.AddressRange.Min >= l.AddressRange.Max {
		return fmt.Errorf("addressRange min %#x >= max %#x: %w",
			uint64(l.AddressRange.Min), uint64(l.AddressRange.Max), ErrInvalid)
	}
	if l.Npad.Stride == 0 {
		return fmt.Errorf("npad.stride must be positive: %w", ErrInvalid)
	}
	if l.Course.MinSize > l.Course.MaxSize {
		return fmt.Errorf("course size window is empty: %w", ErrInvalid)
	}
	if l.Course.HeaderSize <= l.Course.ThemeOffset || l.Course.HeaderSize <= l.Course.StyleOffset+1 {
		return fmt.Errorf("course header shorter than its fields: %w", ErrInvalid)
	}
	return nil
}
