package playing

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/demo"
	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
)

func newTestHost(t *testing.T) *demo.Host {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	h, err := demo.New(demo.Options{Layout: cfg.Layout})
	require.NoError(t, err)
	return h
}

func TestKeyboard_Read(t *testing.T) {
	down := map[ebiten.Key]bool{
		ebiten.KeyZ:          true,
		ebiten.KeyArrowRight: true,
		ebiten.KeyA:          true,
	}
	k := &Keyboard{Keys: DefaultKeys, Pressed: func(key ebiten.Key) bool { return down[key] }}

	in := k.Read()
	assert.Equal(t, replay.ButtonA|replay.ButtonRight, in.Buttons)
	assert.Equal(t, int32(-stickFull), in.StickX)

	// opposite stick keys cancel
	down[ebiten.KeyD] = true
	assert.Equal(t, int32(0), k.Read().StickX)
}

func TestPlaying_UpdateRunsHostFrame(t *testing.T) {
	h := newTestHost(t)
	inputs := []replay.Input{{Buttons: replay.ButtonPlus}, {}}
	i := 0
	p := New(h, Options{
		Input: func() replay.Input {
			in := inputs[i%len(inputs)]
			i++
			return in
		},
		ScreenW: 320,
		ScreenH: 240,
	})

	next, err := p.Update(1.0 / 60)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, demo.PhasePlay, h.Phase())
	assert.Equal(t, uint64(1), h.Frames())
}

func TestPlaying_OnExit(t *testing.T) {
	called := 0
	p := New(newTestHost(t), Options{OnExit: func() { called++ }})
	p.OnExit()
	assert.Equal(t, 1, called)
}

func TestPlaying_PanelText(t *testing.T) {
	h := newTestHost(t)
	p := New(h, Options{
		Input:   func() replay.Input { return replay.Input{Buttons: replay.ButtonPlus} },
		Overlay: func() string { return "mode Active" },
		ScreenW: 320,
	})

	assert.Contains(t, p.PanelText(), "Enter: play")
	_, _ = p.Update(0)
	text := p.PanelText()
	assert.Contains(t, text, "phase 3 state 16")
	assert.Contains(t, text, "input PLUS")
	assert.Contains(t, text, "mode Active")
}

func TestPlaying_CameraClamp(t *testing.T) {
	h := newTestHost(t)
	p := New(h, Options{ScreenW: 320, ScreenH: 240})

	// spawn sits near the left edge
	assert.Equal(t, 0.0, p.cameraX())

	p.screenW = 2000
	assert.Equal(t, 0.0, p.cameraX())
}

func TestPlaying_Draw(t *testing.T) {
	h := newTestHost(t)
	p := New(h, Options{Input: func() replay.Input { return replay.Input{Buttons: replay.ButtonPlus} }, ScreenW: 320, ScreenH: 240})
	_, _ = p.Update(0)

	img := ebiten.NewImage(320, 240)
	assert.NotPanics(t, func() { p.Draw(img) })
}
