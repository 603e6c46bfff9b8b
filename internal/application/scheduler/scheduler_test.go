package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/plugin"
	"github.com/younwookim/tickhook/internal/infrastructure/hook"
)

// mockPlugin is a test double for plugin.Plugin
type mockPlugin struct {
	name  string
	ticks []uint32
	order *[]string
	panic bool
}

func (m *mockPlugin) Name() string { return m.name }

func (m *mockPlugin) Tick(tick uint32) {
	m.ticks = append(m.ticks, tick)
	if m.order != nil {
		*m.order = append(*m.order, m.name)
	}
	if m.panic {
		panic("boom")
	}
}

type countFlusher struct {
	flushes int
	order   *[]string
}

func (c *countFlusher) FlushAll() {
	c.flushes++
	if c.order != nil {
		*c.order = append(*c.order, "flush")
	}
}

func TestScheduler_DispatchOrder(t *testing.T) {
	var order []string
	f := &countFlusher{order: &order}
	s := New(f, 300)
	s.Register(&mockPlugin{name: "fields", order: &order}, &mockPlugin{name: "snapshot", order: &order})

	s.Tick()
	assert.Equal(t, []string{"fields", "snapshot", "flush"}, order)
	assert.Len(t, s.Plugins(), 2)
}

func TestScheduler_TickCounter(t *testing.T) {
	p := &mockPlugin{name: "p"}
	s := New(nil, 0)
	s.Register(p)

	assert.Equal(t, uint32(0), s.Current())
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	assert.Equal(t, []uint32{0, 1, 2}, p.ticks)
	assert.Equal(t, uint32(3), s.Current())
}

func TestScheduler_FlushInterval(t *testing.T) {
	f := &countFlusher{}
	s := New(f, 300)

	for i := 0; i < 601; i++ {
		s.Tick()
	}
	// ticks 0, 300 and 600
	assert.Equal(t, 3, f.flushes)
}

func TestScheduler_AbsorbsPanics(t *testing.T) {
	bad := &mockPlugin{name: "bad", panic: true}
	good := &mockPlugin{name: "good"}
	s := New(nil, 0)
	s.Register(bad, good)

	assert.NotPanics(t, func() {
		s.Tick()
		s.Tick()
	})
	assert.Equal(t, []uint32{0, 1}, good.ticks)
	assert.Equal(t, 2, s.Panics("bad"))
	assert.Equal(t, 0, s.Panics("good"))
	assert.Equal(t, uint32(2), s.Current())
}

func TestScheduler_WrapRunsAfterOriginal(t *testing.T) {
	var order []string
	s := New(nil, 0)
	s.Register(plugin.Func{ID: "p", Fn: func(uint32) { order = append(order, "tick") }})

	tbl := hook.NewTable()
	tbl.Define("procFrame_", func(args ...uint64) uint64 {
		order = append(order, "frame")
		return 9
	})
	require.NoError(t, tbl.Install("procFrame_", s.Wrap))

	assert.Equal(t, uint64(9), tbl.Call("procFrame_"))
	assert.Equal(t, []string{"frame", "tick"}, order)
	assert.Equal(t, uint32(1), s.Current())
}
