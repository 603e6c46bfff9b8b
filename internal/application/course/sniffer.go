// Package course captures course metadata from the host's file writes.
//
// When the host saves a course it writes the decrypted course blob in one
// call. The sniffer recognises such writes by size and reads the theme and
// game style from fixed header offsets.
package course

import (
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logchan"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
)

// maxHeaderByte bounds the first two header bytes of a decrypted blob;
// encrypted blobs fail this almost always
const maxHeaderByte = 30

// Layout describes the course blob
type Layout struct {
	MinSize         uint64
	MaxSize         uint64
	HeaderSize      uint64
	StyleOffset     uint64
	ThemeOffset     uint64
	MaxLoggedWrites int
}

// LayoutFromConfig converts the configured course layout
func LayoutFromConfig(c config.CourseConfig) Layout {
	return Layout{
		MinSize:         uint64(c.MinSize),
		MaxSize:         uint64(c.MaxSize),
		HeaderSize:      uint64(c.HeaderSize),
		StyleOffset:     uint64(c.StyleOffset),
		ThemeOffset:     uint64(c.ThemeOffset),
		MaxLoggedWrites: c.MaxLoggedWrites,
	}
}

// Header is the metadata read from a course blob
type Header struct {
	Theme     uint8
	GameStyle uint32
}

// ParseHeader inspects the first bytes of a write of size bytes. ok is false
// when the write does not look like a decrypted course blob.
func ParseHeader(head []byte, size uint64, l Layout) (h Header, ok bool) {
	if size < l.MinSize || size > l.MaxSize || size < l.HeaderSize {
		return Header{}, false
	}
	if uint64(len(head)) < l.HeaderSize || len(head) < 2 {
		return Header{}, false
	}
	if head[0] > maxHeaderByte || head[1] > maxHeaderByte {
		return Header{}, false
	}
	return Header{
		Theme:     head[l.ThemeOffset],
		GameStyle: uint32(head[l.StyleOffset]) | uint32(head[l.StyleOffset+1])<<8,
	}, true
}

// Sniffer wraps the host's file-write function
type Sniffer struct {
	space  hostmem.Space
	layout Layout
	ch     *logchan.Channel

	writes int
	header Header
	known  bool
	log    *zap.Logger
}

// NewSniffer creates a sniffer. ch may be nil to skip the write log.
func NewSniffer(space hostmem.Space, layout Layout, ch *logchan.Channel) *Sniffer {
	if ch != nil {
		ch.AppendString("event,size,b0b1b2b3\n")
	}
	return &Sniffer{
		space:  space,
		layout: layout,
		ch:     ch,
		log:    logging.Named("course"),
	}
}

// Wrap is a hook.Wrapper for the host write function, whose arguments are
// (file handle, offset, data address, size, option address)
func (s *Sniffer) Wrap(orig hook.Func) hook.Func {
	return func(args ...uint64) uint64 {
		s.Observe(hook.Arg(args, 2), hook.Arg(args, 3))
		return orig(args...)
	}
}

// Observe inspects a write of size bytes at host address data
func (s *Sniffer) Observe(data, size uint64) {
	logged := s.writes < s.layout.MaxLoggedWrites
	s.writes++

	n := uint64(4)
	if size >= s.layout.MinSize && size <= s.layout.MaxSize {
		n = s.layout.HeaderSize
	}
	if size < n {
		n = size
	}
	if n == 0 {
		return
	}
	head := make([]byte, n)
	if err := s.space.ReadAt(head, data); err != nil {
		s.log.Debug("read write buffer failed", zap.Uint64("size", size), zap.Error(err))
		return
	}

	if logged && s.ch != nil && len(head) >= 4 {
		s.ch.Appendf("w,%d,%02x%02x%02x%02x\n", size, head[0], head[1], head[2], head[3])
		s.ch.Flush()
	}

	h, ok := ParseHeader(head, size, s.layout)
	if !ok {
		return
	}
	s.header = h
	s.known = true
	if s.ch != nil {
		s.ch.Appendf("bcd,theme=%d,style=%#x\n", h.Theme, h.GameStyle)
		s.ch.Flush()
	}
	s.log.Info("course header captured", zap.Uint8("theme", h.Theme), zap.Uint32("style", h.GameStyle))
}

// Theme returns the captured course theme
func (s *Sniffer) Theme() (uint8, bool) {
	return s.header.Theme, s.known
}

// GameStyle returns the captured game style
func (s *Sniffer) GameStyle() (uint32, bool) {
	return s.header.GameStyle, s.known
}

// Writes returns how many host writes have been observed
func (s *Sniffer) Writes() int {
	return s.writes
}
