package config

import "github.com/younwookim/tickhook/internal/infrastructure/hostmem"

// LayoutConfig is the root config for layout.json: everything that depends
// on the host build (symbols, field offsets, pointer chains, state ids)
type LayoutConfig struct {
	AddressRange RangeConfig   `json:"addressRange"`
	Symbols      SymbolsConfig `json:"symbols"`
	Object       ObjectLayout  `json:"object"`
	Phase        PhaseConfig   `json:"phase"`
	Npad         NpadLayout    `json:"npad"`
	States       StatesConfig  `json:"states"`
	Course       CourseConfig  `json:"course"`
}

// RangeConfig is the plausible host address range
type RangeConfig struct {
	Min Hex `json:"min"`
	Max Hex `json:"max"`
}

// Range converts the config to a hostmem range
func (r RangeConfig) Range() hostmem.Range {
	return hostmem.Range{Min: uint64(r.Min), Max: uint64(r.Max)}
}

// SymbolsConfig names the host functions the core wraps
type SymbolsConfig struct {
	Frame       string `json:"frame"`
	ChangeState string `json:"changeState"`
	Npad        string `json:"npad"`
	WriteFile   string `json:"writeFile"`
}

// ObjectLayout holds field offsets of the tracked object
type ObjectLayout struct {
	PosX           Hex `json:"posX"`
	PosY           Hex `json:"posY"`
	VelX           Hex `json:"velX"`
	VelY           Hex `json:"velY"`
	Facing         Hex `json:"facing"`
	TerminalVel    Hex `json:"terminalVel"`
	Gravity        Hex `json:"gravity"`
	CurState       Hex `json:"curState"`
	StateTicks     Hex `json:"stateTicks"`
	SecondaryID    Hex `json:"secondaryID"`
	BufferedAction Hex `json:"bufferedAction"`
	InWater        Hex `json:"inWater"`
}

// PhaseConfig locates the host's coarse application phase.
// Global is relative to the main module base.
type PhaseConfig struct {
	Global      Hex     `json:"global"`
	Offsets     []Hex   `json:"offsets"`
	TracePhases []int32 `json:"tracePhases"` // phases during which the sim trace runs
}

// NpadLayout describes one controller state record in host memory
type NpadLayout struct {
	Stride  Hex `json:"stride"`
	Buttons Hex `json:"buttons"`
	StickX  Hex `json:"stickX"`
	StickY  Hex `json:"stickY"`
}

// StatesConfig lists state ids that derive snapshot flags
type StatesConfig struct {
	Dead []uint32 `json:"dead"`
	Goal []uint32 `json:"goal"`
}

// CourseConfig describes the course blob header fields
type CourseConfig struct {
	MinSize         Hex `json:"minSize"`
	MaxSize         Hex `json:"maxSize"`
	HeaderSize      Hex `json:"headerSize"`
	StyleOffset     Hex `json:"styleOffset"`
	ThemeOffset     Hex `json:"themeOffset"`
	MaxLoggedWrites int `json:"maxLoggedWrites"`
}
