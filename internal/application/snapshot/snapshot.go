// Package snapshot assembles the per-tick status record and writes it to the
// status slot.
//
// The record layout is append-only: fields are never moved or removed once
// published, new fields go at the end and Size grows.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Size is the encoded record size in bytes
const Size = 68

// Sentinels for values that could not be read
const (
	PhaseUnknown int32 = -1
	ThemeUnknown uint8 = 0xFF
)

// Field offsets within the record
const (
	offTick           = 0x00
	offMode           = 0x04
	offPollCount      = 0x08
	offPhase          = 0x0C
	offPosX           = 0x10
	offPosY           = 0x14
	offVelX           = 0x18
	offVelY           = 0x1C
	offState          = 0x20
	offStateTicks     = 0x24
	offSecondaryID    = 0x28
	offInWater        = 0x2C
	offIsDead         = 0x2D
	offIsGoal         = 0x2E
	offHasObject      = 0x2F
	offTheme          = 0x30
	offGameStyle      = 0x34
	offFacing         = 0x38
	offGravity        = 0x3C
	offBufferedAction = 0x40
)

// ErrShortRecord is returned when decoding fewer than Size bytes
var ErrShortRecord = errors.New("snapshot: short record")

// Snapshot is one status record
type Snapshot struct {
	Tick           uint32  `json:"tick"`
	Mode           uint32  `json:"mode"`
	PollCount      uint32  `json:"pollCount"`
	Phase          int32   `json:"phase"`
	PosX           float32 `json:"posX"`
	PosY           float32 `json:"posY"`
	VelX           float32 `json:"velX"`
	VelY           float32 `json:"velY"`
	State          uint32  `json:"state"`
	StateTicks     uint32  `json:"stateTicks"`
	SecondaryID    uint32  `json:"secondaryId"`
	InWater        bool    `json:"inWater"`
	IsDead         bool    `json:"isDead"`
	IsGoal         bool    `json:"isGoal"`
	HasObject      bool    `json:"hasObject"`
	Theme          uint8   `json:"theme"`
	GameStyle      uint32  `json:"gameStyle"`
	Facing         uint32  `json:"facing"`
	Gravity        float32 `json:"gravity"`
	BufferedAction int32   `json:"bufferedAction"`
}

// AppendBinary appends the little-endian encoding of s to b
func (s *Snapshot) AppendBinary(b []byte) ([]byte, error) {
	start := len(b)
	b = append(b, make([]byte, Size)...)
	r := b[start:]

	le := binary.LittleEndian
	le.PutUint32(r[offTick:], s.Tick)
	le.PutUint32(r[offMode:], s.Mode)
	le.PutUint32(r[offPollCount:], s.PollCount)
	le.PutUint32(r[offPhase:], uint32(s.Phase))
	le.PutUint32(r[offPosX:], math.Float32bits(s.PosX))
	le.PutUint32(r[offPosY:], math.Float32bits(s.PosY))
	le.PutUint32(r[offVelX:], math.Float32bits(s.VelX))
	le.PutUint32(r[offVelY:], math.Float32bits(s.VelY))
	le.PutUint32(r[offState:], s.State)
	le.PutUint32(r[offStateTicks:], s.StateTicks)
	le.PutUint32(r[offSecondaryID:], s.SecondaryID)
	r[offInWater] = boolByte(s.InWater)
	r[offIsDead] = boolByte(s.IsDead)
	r[offIsGoal] = boolByte(s.IsGoal)
	r[offHasObject] = boolByte(s.HasObject)
	r[offTheme] = s.Theme
	le.PutUint32(r[offGameStyle:], s.GameStyle)
	le.PutUint32(r[offFacing:], s.Facing)
	le.PutUint32(r[offGravity:], math.Float32bits(s.Gravity))
	le.PutUint32(r[offBufferedAction:], uint32(s.BufferedAction))
	return b, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, Size))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Bytes past Size
// belong to fields this version does not know and are ignored.
func (s *Snapshot) UnmarshalBinary(r []byte) error {
	if len(r) < Size {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortRecord, len(r), Size)
	}
	le := binary.LittleEndian
	*s = Snapshot{
		Tick:           le.Uint32(r[offTick:]),
		Mode:           le.Uint32(r[offMode:]),
		PollCount:      le.Uint32(r[offPollCount:]),
		Phase:          int32(le.Uint32(r[offPhase:])),
		PosX:           math.Float32frombits(le.Uint32(r[offPosX:])),
		PosY:           math.Float32frombits(le.Uint32(r[offPosY:])),
		VelX:           math.Float32frombits(le.Uint32(r[offVelX:])),
		VelY:           math.Float32frombits(le.Uint32(r[offVelY:])),
		State:          le.Uint32(r[offState:]),
		StateTicks:     le.Uint32(r[offStateTicks:]),
		SecondaryID:    le.Uint32(r[offSecondaryID:]),
		InWater:        r[offInWater] != 0,
		IsDead:         r[offIsDead] != 0,
		IsGoal:         r[offIsGoal] != 0,
		HasObject:      r[offHasObject] != 0,
		Theme:          r[offTheme],
		GameStyle:      le.Uint32(r[offGameStyle:]),
		Facing:         le.Uint32(r[offFacing:]),
		Gravity:        math.Float32frombits(le.Uint32(r[offGravity:])),
		BufferedAction: int32(le.Uint32(r[offBufferedAction:])),
	}
	return nil
}

// Decode parses a record
func Decode(r []byte) (Snapshot, error) {
	var s Snapshot
	err := s.UnmarshalBinary(r)
	return s, err
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
