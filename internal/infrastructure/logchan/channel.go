// Package logchan implements buffered, append-only telemetry channels.
//
// A Channel never returns storage errors to its caller: telemetry loss is
// acceptable, a stalled host thread is not. Bytes reach the backing store in
// exactly the order they were appended regardless of where flushes happen.
package logchan

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// DefaultCapacity is the in-memory buffer size of a channel
const DefaultCapacity = 8192

// scratchSize bounds a single formatted record
const scratchSize = 256

// Channel is a buffered append-only byte sink backed by one file
type Channel struct {
	fsys storage.FS
	name string

	buf  []byte
	fill int
	// cursor is the append position in the backing store
	cursor int64

	initialized bool
	log         *zap.Logger
}

// New creates a channel over fsys with the given buffer capacity.
// The channel is inert until Init is called.
func New(fsys storage.FS, capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		fsys: fsys,
		buf:  make([]byte, capacity),
		log:  logging.Named("logchan"),
	}
}

// Init truncates any prior backing store for name and resets the channel
func (c *Channel) Init(name string) {
	c.name = name
	if err := c.fsys.Delete(name); err != nil && !errors.Is(err, storage.ErrNotExist) {
		c.log.Debug("delete prior store failed", zap.String("channel", name), zap.Error(err))
	}
	if err := c.fsys.Create(name, 0); err != nil {
		c.log.Warn("create store failed", zap.String("channel", name), zap.Error(err))
	}
	c.fill = 0
	c.cursor = 0
	c.initialized = true
}

// Name returns the backing store name
func (c *Channel) Name() string {
	return c.name
}

// Capacity returns the buffer capacity
func (c *Channel) Capacity() int {
	return len(c.buf)
}

// Buffered returns the number of bytes waiting in memory
func (c *Channel) Buffered() int {
	return c.fill
}

// Cursor returns the number of bytes handed to the backing store so far
func (c *Channel) Cursor() int64 {
	return c.cursor
}

// Append adds p to the channel
func (c *Channel) Append(p []byte) {
	if !c.initialized || len(p) == 0 {
		return
	}

	if c.fill+len(p) >= len(c.buf) {
		c.Flush()
	}

	// Larger than the whole buffer: write straight through
	if len(p) >= len(c.buf) {
		c.writeAt(p)
		return
	}

	copy(c.buf[c.fill:], p)
	c.fill += len(p)
}

// AppendString adds s to the channel
func (c *Channel) AppendString(s string) {
	c.Append([]byte(s))
}

// Appendf formats a record and appends it. Records longer than the scratch
// size are truncated.
func (c *Channel) Appendf(format string, args ...any) {
	if !c.initialized {
		return
	}
	var scratch [scratchSize]byte
	out := fmt.Appendf(scratch[:0], format, args...)
	if len(out) > scratchSize-1 {
		out = out[:scratchSize-1]
	}
	c.Append(out)
}

// Flush hands buffered bytes to the backing store
func (c *Channel) Flush() {
	if !c.initialized || c.fill == 0 {
		return
	}
	c.writeAt(c.buf[:c.fill])
	c.fill = 0
}

// writeAt extends the store and writes p at the cursor. Once the store is
// open the cursor advances even if the write fails, so p is dropped rather
// than retried.
func (c *Channel) writeAt(p []byte) {
	f, err := c.fsys.Open(c.name, storage.ModeWrite)
	if err != nil {
		c.log.Debug("open store failed", zap.String("channel", c.name), zap.Error(err))
		return
	}
	defer func() { _ = f.Close() }()
	defer func() { c.cursor += int64(len(p)) }()

	if err := f.SetSize(c.cursor + int64(len(p))); err != nil {
		c.log.Debug("extend store failed", zap.String("channel", c.name), zap.Error(err))
		return
	}
	if _, err := f.WriteAt(p, c.cursor, storage.WriteOption{Flush: true}); err != nil {
		c.log.Debug("write store failed", zap.String("channel", c.name), zap.Error(err))
	}
}
