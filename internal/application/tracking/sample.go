package tracking

import (
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
)

// Layout holds the field offsets of the tracked object
type Layout struct {
	PosX           uint64
	PosY           uint64
	VelX           uint64
	VelY           uint64
	Facing         uint64
	TerminalVel    uint64
	Gravity        uint64
	CurState       uint64
	StateTicks     uint64
	SecondaryID    uint64
	BufferedAction uint64
	InWater        uint64
}

// LayoutFromConfig converts configured offsets
func LayoutFromConfig(c config.ObjectLayout) Layout {
	return Layout{
		PosX:           uint64(c.PosX),
		PosY:           uint64(c.PosY),
		VelX:           uint64(c.VelX),
		VelY:           uint64(c.VelY),
		Facing:         uint64(c.Facing),
		TerminalVel:    uint64(c.TerminalVel),
		Gravity:        uint64(c.Gravity),
		CurState:       uint64(c.CurState),
		StateTicks:     uint64(c.StateTicks),
		SecondaryID:    uint64(c.SecondaryID),
		BufferedAction: uint64(c.BufferedAction),
		InWater:        uint64(c.InWater),
	}
}

// Sample is one read of the tracked object's fields. Fields that failed
// their range check read as zero.
type Sample struct {
	PosX, PosY     float32
	VelX, VelY     float32
	State          uint32
	StateTicks     uint32
	SecondaryID    uint32
	InWater        uint8
	Facing         uint32
	Gravity        float32
	TerminalVel    float32
	BufferedAction int32
}

// Read samples every field of obj
func Read(obj hostmem.Object, l Layout) Sample {
	return Sample{
		PosX:           obj.F32(l.PosX),
		PosY:           obj.F32(l.PosY),
		VelX:           obj.F32(l.VelX),
		VelY:           obj.F32(l.VelY),
		State:          obj.U32(l.CurState),
		StateTicks:     obj.U32(l.StateTicks),
		SecondaryID:    obj.U32(l.SecondaryID),
		InWater:        obj.U8(l.InWater),
		Facing:         obj.U32(l.Facing),
		Gravity:        obj.F32(l.Gravity),
		TerminalVel:    obj.F32(l.TerminalVel),
		BufferedAction: obj.I32(l.BufferedAction),
	}
}
