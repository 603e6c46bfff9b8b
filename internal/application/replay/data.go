// Package replay injects scripted or live input into the host's input stream.
package replay

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Input is one controller state: a button bitmask and the left stick
type Input struct {
	Buttons uint64
	StickX  int32
	StickY  int32
}

// Merge combines real host input with injected input. Buttons are ORed; a
// stick axis is replaced only when the injected axis is off-centre.
func Merge(real, injected Input) Input {
	out := Input{
		Buttons: real.Buttons | injected.Buttons,
		StickX:  real.StickX,
		StickY:  real.StickY,
	}
	if injected.StickX != 0 {
		out.StickX = injected.StickX
	}
	if injected.StickY != 0 {
		out.StickY = injected.StickY
	}
	return out
}

// IsZero reports whether the input presses nothing and leaves the stick centred
func (in Input) IsZero() bool {
	return in == Input{}
}

// Keyframe is a sparse input change that holds from Tick until superseded
type Keyframe struct {
	Tick uint32
	Input
}

// LiveRecordSize is the size of the live-input resource
const LiveRecordSize = 16

// EncodeLive packs an input as the live-input record: u64 buttons, i32 x, i32 y
func EncodeLive(in Input) []byte {
	b := make([]byte, LiveRecordSize)
	binary.LittleEndian.PutUint64(b[0:8], in.Buttons)
	binary.LittleEndian.PutUint32(b[8:12], uint32(in.StickX))
	binary.LittleEndian.PutUint32(b[12:16], uint32(in.StickY))
	return b
}

// DecodeLive unpacks a live-input record. Short records are rejected.
func DecodeLive(b []byte) (Input, bool) {
	if len(b) < LiveRecordSize {
		return Input{}, false
	}
	return Input{
		Buttons: binary.LittleEndian.Uint64(b[0:8]),
		StickX:  int32(binary.LittleEndian.Uint32(b[8:12])),
		StickY:  int32(binary.LittleEndian.Uint32(b[12:16])),
	}, true
}

// Button bits of the host controller
const (
	ButtonA      uint64 = 0x01
	ButtonB      uint64 = 0x02
	ButtonX      uint64 = 0x04
	ButtonY      uint64 = 0x08
	ButtonL      uint64 = 0x40
	ButtonR      uint64 = 0x80
	ButtonZL     uint64 = 0x100
	ButtonZR     uint64 = 0x200
	ButtonPlus   uint64 = 0x400
	ButtonMinus  uint64 = 0x800
	ButtonLeft   uint64 = 0x1000
	ButtonUp     uint64 = 0x2000
	ButtonRight  uint64 = 0x4000
	ButtonDown   uint64 = 0x8000
	ButtonLStick uint64 = 0x20000
	ButtonRStick uint64 = 0x40000
)

// ButtonNames maps upper-case button names to their bits
var ButtonNames = map[string]uint64{
	"A":      ButtonA,
	"B":      ButtonB,
	"X":      ButtonX,
	"Y":      ButtonY,
	"L":      ButtonL,
	"R":      ButtonR,
	"ZL":     ButtonZL,
	"ZR":     ButtonZR,
	"PLUS":   ButtonPlus,
	"MINUS":  ButtonMinus,
	"LEFT":   ButtonLeft,
	"UP":     ButtonUp,
	"RIGHT":  ButtonRight,
	"DOWN":   ButtonDown,
	"LSTICK": ButtonLStick,
	"RSTICK": ButtonRStick,
}

// ParseButtons parses a list of button names separated by ',' or '+'
func ParseButtons(s string) (uint64, error) {
	var mask uint64
	for _, name := range strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return r == ',' || r == '+'
	}) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		bit, ok := ButtonNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown button %q (valid: %s)", name, strings.Join(buttonList(), ", "))
		}
		mask |= bit
	}
	return mask, nil
}

// FormatButtons renders a mask as '+'-joined names, with unnamed bits in hex
func FormatButtons(mask uint64) string {
	if mask == 0 {
		return "-"
	}
	var parts []string
	for _, name := range buttonList() {
		if bit := ButtonNames[name]; mask&bit != 0 {
			parts = append(parts, name)
			mask &^= bit
		}
	}
	if mask != 0 {
		parts = append(parts, fmt.Sprintf("%#x", mask))
	}
	return strings.Join(parts, "+")
}

func buttonList() []string {
	names := make([]string, 0, len(ButtonNames))
	for name := range ButtonNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return ButtonNames[names[i]] < ButtonNames[names[j]] })
	return names
}
