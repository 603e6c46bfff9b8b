// Package demo is a small side-scrolling platformer built to be instrumented.
//
// Everything the core inspects lives in a hostmem.Image laid out the way the
// layout config describes: the phase pointer chain, the player object and the
// controller records. Every call the core hooks (frame, state change, input
// poll, file write) goes through a hook.Table, so installing the core on the
// table instruments the game exactly as it would a real host.
package demo

import (
	"fmt"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
)

// Host memory map
const (
	DefaultBase uint64 = 0x7100000000
	heapBase    uint64 = 0x2000000000
	nodeSize           = 0x1000
	objectSize         = 0x1000
	npadSize           = 0x100
	courseSize         = 0x5BFC0
)

// Phases
const (
	PhaseEditor int32 = 1
	PhasePlay   int32 = 3
)

// Player states
const (
	StateIdle      uint32 = 1
	StateWalk      uint32 = 2
	StateJump      uint32 = 3
	StateFall      uint32 = 4
	StateDeath     uint32 = 9
	StateDeathEnd  uint32 = 10
	StateRunning   uint32 = 16
	StateRespawned uint32 = 43
	StateGoal      uint32 = 122
	StateGoalEnd   uint32 = 124
)

// Timed state lengths in frames
const (
	runInFrames   = 30
	deathFrames   = 60
	endFrames     = 30
	goalFrames    = 60
	stickDeadZone = 8000
)

// Options configure a host
type Options struct {
	Layout *config.LayoutConfig
	// Base is the main module base; DefaultBase when zero
	Base uint64
	// Stage defaults to DefaultStage
	Stage *Stage
	// Theme and Style are stamped into saved course blobs
	Theme uint8
	Style uint16
}

// Host is the running game
type Host struct {
	layout *config.LayoutConfig
	img    *hostmem.Image
	tbl    *hook.Table
	stage  *Stage

	phaseAddr  uint64
	objAddr    uint64
	npadAddr   uint64
	courseAddr uint64

	phase      int32
	state      uint32
	stateTicks uint32
	timer      int
	body       Body
	real       replay.Input
	effective  replay.Input
	prev       uint64
	frames     uint64
	saves      int
}

// New maps the host's memory and defines its hookable functions
func New(opts Options) (*Host, error) {
	if opts.Layout == nil {
		return nil, fmt.Errorf("demo: layout is required")
	}
	base := opts.Base
	if base == 0 {
		base = DefaultBase
	}
	stage := opts.Stage
	if stage == nil {
		stage = DefaultStage()
	}

	h := &Host{
		layout: opts.Layout,
		img:    hostmem.NewImage(base),
		tbl:    hook.NewTable(),
		stage:  stage,
		phase:  PhaseEditor,
	}
	if err := h.mapMemory(base, opts.Theme, opts.Style); err != nil {
		return nil, fmt.Errorf("failed to map host memory: %w", err)
	}
	h.defineSymbols()
	return h, nil
}

// mapMemory lays out the phase chain, the player, the controller records and
// the course blob
func (h *Host) mapMemory(base uint64, theme uint8, style uint16) error {
	l := h.layout
	next := heapBase

	global := base + uint64(l.Phase.Global)
	if err := h.img.Map(global, 8); err != nil {
		return err
	}
	// global -> node -> ... -> node+last offset holds the phase
	offsets := config.Uint64s(l.Phase.Offsets)
	ptrAt := global
	var node uint64
	for i := 0; i == 0 || i < len(offsets); i++ {
		node = next
		if err := h.img.Map(node, nodeSize); err != nil {
			return err
		}
		if err := hostmem.PutU64(h.img, ptrAt, node); err != nil {
			return err
		}
		next += nodeSize
		if i < len(offsets) {
			ptrAt = node + offsets[i]
		}
	}
	h.phaseAddr = node
	if len(offsets) > 0 {
		h.phaseAddr = node + offsets[len(offsets)-1]
	}

	h.objAddr = next
	if err := h.img.Map(h.objAddr, objectSize); err != nil {
		return err
	}
	next += objectSize

	h.npadAddr = next
	if err := h.img.Map(h.npadAddr, npadSize); err != nil {
		return err
	}
	next += npadSize

	h.courseAddr = next
	if err := h.img.Map(h.courseAddr, courseSize); err != nil {
		return err
	}
	if err := hostmem.PutU8(h.img, h.courseAddr+uint64(l.Course.ThemeOffset), theme); err != nil {
		return err
	}
	if err := hostmem.PutU8(h.img, h.courseAddr+uint64(l.Course.StyleOffset), uint8(style)); err != nil {
		return err
	}
	if err := hostmem.PutU8(h.img, h.courseAddr+uint64(l.Course.StyleOffset)+1, uint8(style>>8)); err != nil {
		return err
	}
	return h.writePhase()
}

func (h *Host) defineSymbols() {
	sym := h.layout.Symbols
	h.tbl.Define(sym.Frame, func(args ...uint64) uint64 { return h.frames })
	h.tbl.Define(sym.ChangeState, h.changeStateImpl)
	h.tbl.Define(sym.Npad, h.npadImpl)
	h.tbl.Define(sym.WriteFile, func(args ...uint64) uint64 { return 0 })
}

// Space is the host address space
func (h *Host) Space() *hostmem.Image { return h.img }

// Symbols is the table the host calls through
func (h *Host) Symbols() *hook.Table { return h.tbl }

// Stage returns the course geometry
func (h *Host) Stage() *Stage { return h.stage }

// Phase returns the current game phase
func (h *Host) Phase() int32 { return h.phase }

// State returns the player's current state
func (h *Host) State() uint32 { return h.state }

// Body returns the player's physics body
func (h *Host) Body() Body { return h.body }

// Effective returns the input the game acted on last frame
func (h *Host) Effective() replay.Input { return h.effective }

// Frames returns the number of frames run
func (h *Host) Frames() uint64 { return h.frames }

// Saves returns the number of course saves
func (h *Host) Saves() int { return h.saves }

// PlayerHandle returns the player object address
func (h *Host) PlayerHandle() uint64 { return h.objAddr }

// Frame runs one frame with real as the physical controller state and
// returns the input the game acted on
func (h *Host) Frame(real replay.Input) replay.Input {
	sym := h.layout.Symbols
	h.real = real
	h.tbl.Call(sym.Npad, h.npadAddr, 1, 0)
	h.effective = h.readNpad()

	pressed := h.effective.Buttons &^ h.prev
	h.prev = h.effective.Buttons

	switch h.phase {
	case PhaseEditor:
		h.updateEditor(pressed)
	case PhasePlay:
		h.updatePlay(pressed)
	}

	h.tbl.Call(sym.Frame, 0)
	h.frames++
	return h.effective
}

func (h *Host) updateEditor(pressed uint64) {
	if pressed&replay.ButtonX != 0 {
		h.saveCourse()
	}
	if pressed&replay.ButtonPlus != 0 {
		h.phase = PhasePlay
		_ = h.writePhase()
		h.spawn()
	}
}

func (h *Host) updatePlay(pressed uint64) {
	if pressed&replay.ButtonMinus != 0 {
		h.phase = PhaseEditor
		_ = h.writePhase()
		return
	}

	h.stateTicks++
	h.timer--
	switch h.state {
	case StateRunning:
		h.body.VX = 0
		if h.timer <= 0 {
			h.changeState(StateIdle)
		}
	case StateDeath:
		if h.timer <= 0 {
			h.changeState(StateDeathEnd)
			h.timer = endFrames
		}
	case StateGoal:
		if h.timer <= 0 {
			h.changeState(StateGoalEnd)
			h.timer = endFrames
		}
	case StateDeathEnd, StateGoalEnd:
		if h.timer <= 0 {
			h.changeState(StateRespawned)
			h.spawn()
		}
	default:
		h.control(h.effective, pressed)
	}
	h.writeObject()
}

// control runs one frame of player movement
func (h *Host) control(in replay.Input, pressed uint64) {
	move := 0
	if in.Buttons&replay.ButtonLeft != 0 || in.StickX < -stickDeadZone {
		move--
	}
	if in.Buttons&replay.ButtonRight != 0 || in.StickX > stickDeadZone {
		move++
	}
	jump := pressed&(replay.ButtonA|replay.ButtonB) != 0

	h.body.Step(h.stage, move, jump)

	switch {
	case h.body.Y > h.stage.KillY:
		h.changeState(StateDeath)
		h.timer = deathFrames
	case h.body.X >= h.stage.GoalX:
		h.changeState(StateGoal)
		h.timer = goalFrames
	case !h.body.OnGround && h.body.VY < 0:
		h.setState(StateJump)
	case !h.body.OnGround:
		h.setState(StateFall)
	case move != 0:
		h.setState(StateWalk)
	default:
		h.setState(StateIdle)
	}
}

func (h *Host) spawn() {
	h.body = Body{X: h.stage.SpawnX, Y: h.stage.SpawnY, OnGround: true, FacingRight: true}
	h.changeState(StateRunning)
	h.timer = runInFrames
	h.writeObject()
}

// setState changes state only when it differs
func (h *Host) setState(s uint32) {
	if s != h.state {
		h.changeState(s)
	}
}

func (h *Host) changeState(s uint32) {
	h.tbl.Call(h.layout.Symbols.ChangeState, h.objAddr, uint64(s))
}

func (h *Host) changeStateImpl(args ...uint64) uint64 {
	obj, s := hook.Arg(args, 0), uint32(hook.Arg(args, 1))
	if obj != h.objAddr {
		return 0
	}
	h.state = s
	h.stateTicks = 0
	_ = hostmem.PutU32(h.img, obj+uint64(h.layout.Object.CurState), s)
	_ = hostmem.PutU32(h.img, obj+uint64(h.layout.Object.StateTicks), 0)
	return 1
}

// npadImpl writes the physical controller into the first record
func (h *Host) npadImpl(args ...uint64) uint64 {
	out, capacity := hook.Arg(args, 0), int32(hook.Arg(args, 1))
	if capacity < 1 {
		return 0
	}
	n := h.layout.Npad
	_ = hostmem.PutU64(h.img, out, h.frames)
	_ = hostmem.PutU64(h.img, out+uint64(n.Buttons), h.real.Buttons)
	_ = hostmem.PutI32(h.img, out+uint64(n.StickX), h.real.StickX)
	_ = hostmem.PutI32(h.img, out+uint64(n.StickY), h.real.StickY)
	return 1
}

func (h *Host) readNpad() replay.Input {
	n := h.layout.Npad
	buttons, _ := hostmem.U64(h.img, h.npadAddr+uint64(n.Buttons))
	x, _ := hostmem.I32(h.img, h.npadAddr+uint64(n.StickX))
	y, _ := hostmem.I32(h.img, h.npadAddr+uint64(n.StickY))
	return replay.Input{Buttons: buttons, StickX: x, StickY: y}
}

func (h *Host) saveCourse() {
	h.saves++
	h.tbl.Call(h.layout.Symbols.WriteFile, 1, 0, h.courseAddr, courseSize, 0)
}

func (h *Host) writePhase() error {
	return hostmem.PutI32(h.img, h.phaseAddr, h.phase)
}

// writeObject mirrors the body into object memory
func (h *Host) writeObject() {
	o, a := h.layout.Object, h.objAddr
	b := h.body
	facing := uint32(0)
	if !b.FacingRight {
		facing = 1
	}
	inWater := uint8(0)
	if h.stage.InWater(b.X) {
		inWater = 1
	}
	_ = hostmem.PutF32(h.img, a+uint64(o.PosX), b.X)
	_ = hostmem.PutF32(h.img, a+uint64(o.PosY), b.Y)
	_ = hostmem.PutF32(h.img, a+uint64(o.VelX), b.VX)
	_ = hostmem.PutF32(h.img, a+uint64(o.VelY), b.VY)
	_ = hostmem.PutU32(h.img, a+uint64(o.Facing), facing)
	_ = hostmem.PutF32(h.img, a+uint64(o.TerminalVel), TerminalVel)
	_ = hostmem.PutF32(h.img, a+uint64(o.Gravity), Gravity)
	_ = hostmem.PutU32(h.img, a+uint64(o.StateTicks), h.stateTicks)
	_ = hostmem.PutU8(h.img, a+uint64(o.InWater), inWater)
}
