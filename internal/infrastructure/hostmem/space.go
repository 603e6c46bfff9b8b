// Package hostmem reads and writes the address space of the host process.
//
// Host objects are opaque: the core only knows a handle (an address) and
// fixed field offsets. Nothing here proves that an address is live. Callers
// get coarse range checks before every dereference and sentinel values when
// a check or a read fails.
package hostmem

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrUnmapped is returned when an access touches an address with no backing
var ErrUnmapped = errors.New("hostmem: address not mapped")

// Space is a host address space
type Space interface {
	ReadAt(p []byte, addr uint64) error
	WriteAt(p []byte, addr uint64) error
}

// BaseResolver resolves the load address of the host's main module
type BaseResolver interface {
	MainModuleBase() (uint64, error)
}

// Host values are little-endian
var order = binary.LittleEndian

// U8 reads a byte at addr
func U8(s Space, addr uint64) (uint8, error) {
	var b [1]byte
	if err := s.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a uint16 at addr
func U16(s Space, addr uint64) (uint16, error) {
	var b [2]byte
	if err := s.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return order.Uint16(b[:]), nil
}

// U32 reads a uint32 at addr
func U32(s Space, addr uint64) (uint32, error) {
	var b [4]byte
	if err := s.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return order.Uint32(b[:]), nil
}

// I32 reads an int32 at addr
func I32(s Space, addr uint64) (int32, error) {
	v, err := U32(s, addr)
	return int32(v), err
}

// U64 reads a uint64 at addr
func U64(s Space, addr uint64) (uint64, error) {
	var b [8]byte
	if err := s.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return order.Uint64(b[:]), nil
}

// F32 reads a float32 at addr
func F32(s Space, addr uint64) (float32, error) {
	v, err := U32(s, addr)
	return math.Float32frombits(v), err
}

// PutU32 writes a uint32 at addr
func PutU32(s Space, addr uint64, v uint32) error {
	var b [4]byte
	order.PutUint32(b[:], v)
	return s.WriteAt(b[:], addr)
}

// PutI32 writes an int32 at addr
func PutI32(s Space, addr uint64, v int32) error {
	return PutU32(s, addr, uint32(v))
}

// PutU64 writes a uint64 at addr
func PutU64(s Space, addr uint64, v uint64) error {
	var b [8]byte
	order.PutUint64(b[:], v)
	return s.WriteAt(b[:], addr)
}

// PutF32 writes a float32 at addr
func PutF32(s Space, addr uint64, v float32) error {
	return PutU32(s, addr, math.Float32bits(v))
}

// PutU8 writes a byte at addr
func PutU8(s Space, addr uint64, v uint8) error {
	return s.WriteAt([]byte{v}, addr)
}
