package replay

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// ErrNoScript is returned when the script resource is missing or holds no
// usable keyframe
var ErrNoScript = errors.New("replay: no script")

// Script limits
const (
	DefaultMaxBytes     = 64 * 1024
	DefaultMaxKeyframes = 2048
)

// Script is a parsed input script
type Script struct {
	Keyframes []Keyframe

	// End, when HasEnd is set, is the tick at which playback stops
	// regardless of held input
	End    uint32
	HasEnd bool

	// Skipped lists 1-based line numbers that could not be parsed
	Skipped []int
	// Reordered is set when keyframes were not in tick order and had to be sorted
	Reordered bool
	// Truncated is set when the resource was cut at the read limit or the
	// keyframe limit
	Truncated bool
}

// LoadScript reads and parses name from fsys, reading at most maxBytes
func LoadScript(fsys storage.FS, name string, maxBytes, maxKeyframes int) (*Script, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, truncated, err := storage.ReadFile(fsys, name, maxBytes)
	if errors.Is(err, storage.ErrNotExist) {
		return nil, fmt.Errorf("script %s: %w", name, ErrNoScript)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", name, err)
	}
	s, err := ParseScript(data, truncated, maxKeyframes)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	return s, nil
}

// ParseScript parses script text. The first line is a header. Each further
// line is "tick,buttons,stick_x,stick_y" or "end,tick". Buttons take a 0x
// prefix for hexadecimal. Blank lines and lines starting with '#' are ignored;
// other malformed lines are skipped. When truncated is set, a final line
// without a newline is treated as cut off and discarded.
func ParseScript(data []byte, truncated bool, maxKeyframes int) (*Script, error) {
	if maxKeyframes <= 0 {
		maxKeyframes = DefaultMaxKeyframes
	}
	s := &Script{Truncated: truncated}

	lines := bytes.Split(data, []byte{'\n'})
	if truncated && len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}

	for i, raw := range lines {
		if i == 0 {
			continue // header
		}
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if end, ok := parseEnd(line); ok {
			if !s.HasEnd || end < s.End {
				s.End = end
			}
			s.HasEnd = true
			continue
		}

		kf, err := parseKeyframe(line)
		if err != nil {
			s.Skipped = append(s.Skipped, i+1)
			continue
		}
		// keep scanning past the limit so a later end marker still applies
		if len(s.Keyframes) >= maxKeyframes {
			s.Truncated = true
			continue
		}
		s.Keyframes = append(s.Keyframes, kf)
	}

	if len(s.Keyframes) == 0 {
		return nil, ErrNoScript
	}

	if !sort.SliceIsSorted(s.Keyframes, func(i, j int) bool { return s.Keyframes[i].Tick < s.Keyframes[j].Tick }) {
		sort.SliceStable(s.Keyframes, func(i, j int) bool { return s.Keyframes[i].Tick < s.Keyframes[j].Tick })
		s.Reordered = true
	}
	return s, nil
}

func parseEnd(line string) (uint32, bool) {
	name, rest, ok := strings.Cut(line, ",")
	if !ok || !strings.EqualFold(strings.TrimSpace(name), "end") {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func parseKeyframe(line string) (Keyframe, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 4 {
		return Keyframe{}, fmt.Errorf("want 4 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	tick, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Keyframe{}, fmt.Errorf("tick: %w", err)
	}
	buttons, err := config.ParseUint(fields[1])
	if err != nil {
		return Keyframe{}, fmt.Errorf("buttons: %w", err)
	}
	x, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return Keyframe{}, fmt.Errorf("stick_x: %w", err)
	}
	y, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return Keyframe{}, fmt.Errorf("stick_y: %w", err)
	}

	return Keyframe{
		Tick: uint32(tick),
		Input: Input{
			Buttons: buttons,
			StickX:  int32(x),
			StickY:  int32(y),
		},
	}, nil
}

// Format renders keyframes back into script text with a header line
func Format(kfs []Keyframe, end *uint32) []byte {
	var b bytes.Buffer
	b.WriteString("tick,buttons,stick_x,stick_y\n")
	for _, kf := range kfs {
		fmt.Fprintf(&b, "%d,%#x,%d,%d\n", kf.Tick, kf.Buttons, kf.StickX, kf.StickY)
	}
	if end != nil {
		fmt.Fprintf(&b, "end,%d\n", *end)
	}
	return b.Bytes()
}
