package demo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/core"
	"github.com/younwookim/tickhook/internal/application/demo"
	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/application/state"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

func newHost(t *testing.T) (*demo.Host, *config.Config) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	h, err := demo.New(demo.Options{Layout: cfg.Layout, Theme: 4, Style: 0x5733})
	require.NoError(t, err)
	return h, cfg
}

// runUntil runs frames with in held until cond holds, failing after limit frames
func runUntil(t *testing.T, h *demo.Host, in replay.Input, limit int, cond func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		h.Frame(in)
	}
	require.True(t, cond(), "condition not met after %d frames", limit)
}

func enterPlay(t *testing.T, h *demo.Host) {
	t.Helper()
	h.Frame(replay.Input{Buttons: replay.ButtonPlus})
	require.Equal(t, demo.PhasePlay, h.Phase())
	require.Equal(t, demo.StateRunning, h.State())
	runUntil(t, h, replay.Input{}, 40, func() bool { return h.State() == demo.StateIdle })
}

func TestNew_RequiresLayout(t *testing.T) {
	_, err := demo.New(demo.Options{})
	assert.Error(t, err)
}

func TestHost_PhaseChain(t *testing.T) {
	h, cfg := newHost(t)
	l := cfg.Layout
	check := hostmem.RangeCheck(l.AddressRange.Range().Check)
	root := demo.DefaultBase + uint64(l.Phase.Global)

	phase, ok := hostmem.ReadChainI32(h.Space(), root, config.Uint64s(l.Phase.Offsets), check)
	require.True(t, ok)
	assert.Equal(t, demo.PhaseEditor, phase)

	enterPlay(t, h)
	phase, ok = hostmem.ReadChainI32(h.Space(), root, config.Uint64s(l.Phase.Offsets), check)
	require.True(t, ok)
	assert.Equal(t, demo.PhasePlay, phase)
}

func TestHost_ObjectMirrorsBody(t *testing.T) {
	h, cfg := newHost(t)
	enterPlay(t, h)

	for i := 0; i < 20; i++ {
		h.Frame(replay.Input{Buttons: replay.ButtonRight})
	}
	assert.Equal(t, demo.StateWalk, h.State())

	obj := hostmem.Object{Space: h.Space(), Handle: h.PlayerHandle(), Check: func(uint64) bool { return true }}
	o := cfg.Layout.Object
	assert.Equal(t, h.Body().X, obj.F32(uint64(o.PosX)))
	assert.Equal(t, demo.WalkSpeed, obj.F32(uint64(o.VelX)))
	assert.Equal(t, demo.StateWalk, obj.U32(uint64(o.CurState)))
	assert.Equal(t, demo.Gravity, obj.F32(uint64(o.Gravity)))
}

func TestHost_JumpAndLand(t *testing.T) {
	h, _ := newHost(t)
	enterPlay(t, h)

	h.Frame(replay.Input{Buttons: replay.ButtonA})
	assert.Equal(t, demo.StateJump, h.State())
	assert.Less(t, h.Body().Y, float32(200))

	runUntil(t, h, replay.Input{}, 60, func() bool { return h.State() == demo.StateIdle })
	assert.Equal(t, float32(200), h.Body().Y)
}

func TestHost_PitKillsAndRespawns(t *testing.T) {
	h, _ := newHost(t)
	enterPlay(t, h)

	runUntil(t, h, replay.Input{StickX: 30000}, 400, func() bool { return h.State() == demo.StateDeath })
	runUntil(t, h, replay.Input{}, 200, func() bool { return h.State() == demo.StateRunning })
	assert.Equal(t, demo.DefaultStage().SpawnX, h.Body().X)
}

func TestHost_EditorIgnoresMovement(t *testing.T) {
	h, _ := newHost(t)
	for i := 0; i < 10; i++ {
		h.Frame(replay.Input{Buttons: replay.ButtonRight | replay.ButtonA})
	}
	assert.Equal(t, demo.PhaseEditor, h.Phase())
	assert.Equal(t, uint32(0), h.State())
	assert.Equal(t, uint64(10), h.Frames())
}

func TestHost_InstrumentedByCore(t *testing.T) {
	h, cfg := newHost(t)
	fsys := storage.NewMem()
	c, err := core.New(cfg, core.Deps{FS: fsys, Space: h.Space()})
	require.NoError(t, err)
	require.NoError(t, c.Install(h.Symbols()))

	status := func() snapshot.Snapshot {
		data, ok := fsys.Bytes("status.bin")
		require.True(t, ok)
		s, err := snapshot.Decode(data)
		require.NoError(t, err)
		return s
	}

	// save the course in the editor, then play
	h.Frame(replay.Input{Buttons: replay.ButtonX})
	assert.Equal(t, 1, h.Saves())
	s := status()
	assert.Equal(t, uint8(4), s.Theme)
	assert.Equal(t, uint32(0x5733), s.GameStyle)
	assert.Equal(t, demo.PhaseEditor, s.Phase)

	enterPlay(t, h)
	s = status()
	assert.Equal(t, uint32(state.ModeActive), s.Mode)
	assert.Equal(t, demo.PhasePlay, s.Phase)
	assert.True(t, s.HasObject)
	assert.Equal(t, demo.StateIdle, s.State)

	runUntil(t, h, replay.Input{Buttons: replay.ButtonRight}, 400, func() bool { return h.State() == demo.StateDeath })
	s = status()
	assert.Equal(t, uint32(state.ModeTerminalB), s.Mode)
	assert.True(t, s.IsDead)

	runUntil(t, h, replay.Input{}, 200, func() bool { return h.State() == demo.StateRunning })
	assert.Equal(t, uint32(state.ModeUnknown), status().Mode)
	assert.Equal(t, uint32(h.Frames()), status().PollCount)
}

func TestHost_ScriptDrivesGame(t *testing.T) {
	h, cfg := newHost(t)
	fsys := storage.NewMem()
	// enter play, wait out the run-in, then walk right into the first pit
	fsys.Put("tas.csv", []byte("tick,buttons,stick_x,stick_y\n0,0x400,0,0\n1,0,0,0\n40,0x4000,0,0\n"))
	c, err := core.New(cfg, core.Deps{FS: fsys, Space: h.Space()})
	require.NoError(t, err)
	require.NoError(t, c.Install(h.Symbols()))

	runUntil(t, h, replay.Input{}, 400, func() bool { return h.State() == demo.StateDeath })
	assert.Equal(t, replay.ButtonRight, h.Effective().Buttons)
}
