package logchan

import "github.com/younwookim/tickhook/internal/infrastructure/storage"

// Set owns every channel of a session so they can be flushed together
type Set struct {
	fsys     storage.FS
	capacity int
	channels []*Channel
}

// NewSet creates an empty set whose channels share fsys and capacity
func NewSet(fsys storage.FS, capacity int) *Set {
	return &Set{fsys: fsys, capacity: capacity}
}

// Open creates, initializes and registers a channel for name
func (s *Set) Open(name string) *Channel {
	c := New(s.fsys, s.capacity)
	c.Init(name)
	s.channels = append(s.channels, c)
	return c
}

// FlushAll flushes every channel in registration order
func (s *Set) FlushAll() {
	for _, c := range s.channels {
		c.Flush()
	}
}

// Channels returns the registered channels
func (s *Set) Channels() []*Channel {
	return s.channels
}
