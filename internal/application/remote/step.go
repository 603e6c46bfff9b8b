package remote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/younwookim/tickhook/internal/application/replay"
)

// DefaultPress is how long a press holds its buttons when no duration is given
const DefaultPress = 100 * time.Millisecond

// ErrBadStep is returned for a step that cannot be parsed
var ErrBadStep = errors.New("remote: bad step")

// Kind is what a step does with the live-input resource
type Kind int

const (
	// KindPress writes the input, waits, then releases
	KindPress Kind = iota
	// KindHold is a press meant for long durations
	KindHold
	// KindWait leaves the resource untouched for the duration
	KindWait
	// KindSet writes the input and leaves it in place
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindPress:
		return "press"
	case KindHold:
		return "hold"
	case KindWait:
		return "wait"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// Step is one queued controller action
type Step struct {
	Kind     Kind
	Input    replay.Input
	Duration time.Duration
}

// releases reports whether the input is cleared when the step ends
func (s Step) releases() bool {
	return s.Kind == KindPress || s.Kind == KindHold
}

func (s Step) String() string {
	switch s.Kind {
	case KindWait:
		return fmt.Sprintf("wait %s", s.Duration)
	case KindSet:
		return fmt.Sprintf("set %s %d %d", replay.FormatButtons(s.Input.Buttons), s.Input.StickX, s.Input.StickY)
	default:
		return fmt.Sprintf("%s %s %s", s.Kind, replay.FormatButtons(s.Input.Buttons), s.Duration)
	}
}

// Press presses buttons for d, or DefaultPress when d is zero
func Press(buttons uint64, d time.Duration) Step {
	if d <= 0 {
		d = DefaultPress
	}
	return Step{Kind: KindPress, Input: replay.Input{Buttons: buttons}, Duration: d}
}

// Hold holds buttons for d
func Hold(buttons uint64, d time.Duration) Step {
	return Step{Kind: KindHold, Input: replay.Input{Buttons: buttons}, Duration: d}
}

// Wait does nothing for d
func Wait(d time.Duration) Step {
	return Step{Kind: KindWait, Duration: d}
}

// Set writes in and leaves it in effect
func Set(in replay.Input) Step {
	return Step{Kind: KindSet, Input: in}
}

// Release clears any held input
func Release() Step {
	return Set(replay.Input{})
}

// ParseStep parses one textual step:
//
//	press A,RIGHT [100ms]
//	hold B 2s
//	wait 500ms
//	set A+RIGHT [stick_x stick_y]
//	release
func ParseStep(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("%w: empty", ErrBadStep)
	}

	switch strings.ToLower(fields[0]) {
	case "press", "hold":
		if len(fields) < 2 || len(fields) > 3 {
			return Step{}, fmt.Errorf("%w: %q needs buttons and an optional duration", ErrBadStep, line)
		}
		buttons, err := replay.ParseButtons(fields[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %v", ErrBadStep, err)
		}
		var d time.Duration
		if len(fields) == 3 {
			if d, err = time.ParseDuration(fields[2]); err != nil {
				return Step{}, fmt.Errorf("%w: %v", ErrBadStep, err)
			}
		}
		if strings.EqualFold(fields[0], "hold") {
			if d <= 0 {
				return Step{}, fmt.Errorf("%w: hold needs a duration", ErrBadStep)
			}
			return Hold(buttons, d), nil
		}
		return Press(buttons, d), nil

	case "wait":
		if len(fields) != 2 {
			return Step{}, fmt.Errorf("%w: %q needs a duration", ErrBadStep, line)
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %v", ErrBadStep, err)
		}
		return Wait(d), nil

	case "set":
		if len(fields) != 2 && len(fields) != 4 {
			return Step{}, fmt.Errorf("%w: %q needs buttons and optional stick axes", ErrBadStep, line)
		}
		var in replay.Input
		if fields[1] != "-" {
			buttons, err := replay.ParseButtons(fields[1])
			if err != nil {
				return Step{}, fmt.Errorf("%w: %v", ErrBadStep, err)
			}
			in.Buttons = buttons
		}
		if len(fields) == 4 {
			x, err := strconv.ParseInt(fields[2], 10, 32)
			if err != nil {
				return Step{}, fmt.Errorf("%w: stick x: %v", ErrBadStep, err)
			}
			y, err := strconv.ParseInt(fields[3], 10, 32)
			if err != nil {
				return Step{}, fmt.Errorf("%w: stick y: %v", ErrBadStep, err)
			}
			in.StickX, in.StickY = int32(x), int32(y)
		}
		return Set(in), nil

	case "release":
		return Release(), nil
	}
	return Step{}, fmt.Errorf("%w: unknown action %q", ErrBadStep, fields[0])
}
