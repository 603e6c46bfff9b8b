package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/monitor"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

func newTestModel(t *testing.T) (*watchModel, *storage.Mem) {
	t.Helper()
	fsys := storage.NewMem()
	return newWatchModel(monitor.New(fsys, "status.bin"), "status.bin", time.Millisecond), fsys
}

func putStatus(t *testing.T, fsys *storage.Mem, s snapshot.Snapshot) {
	t.Helper()
	b, err := s.MarshalBinary()
	require.NoError(t, err)
	fsys.Put("status.bin", b)
}

func TestWatchModel_WaitsForStatus(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "waiting for status")

	_, cmd := m.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd, "keeps polling")
	assert.Contains(t, m.View(), "read failed")
}

func TestWatchModel_ShowsReading(t *testing.T) {
	m, fsys := newTestModel(t)
	putStatus(t, fsys, snapshot.Snapshot{Tick: 1, PollCount: 1})
	m.Update(tickMsg(time.Now()))
	assert.Contains(t, m.View(), "first reading")

	putStatus(t, fsys, snapshot.Snapshot{Tick: 2, PollCount: 2})
	m.Update(tickMsg(time.Now()))
	view := m.View()
	assert.Contains(t, view, "RUNNING")
	assert.Contains(t, view, "INPUTS_ON")
	assert.Contains(t, view, "polls")
}

func TestWatchModel_PauseAndQuit(t *testing.T) {
	m, fsys := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	assert.True(t, m.paused)

	putStatus(t, fsys, snapshot.Snapshot{Tick: 5})
	m.Update(tickMsg(time.Now()))
	assert.False(t, m.have, "paused model does not read")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
