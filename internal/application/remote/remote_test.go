package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/slot"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// recordWriter captures every record written
type recordWriter struct {
	records []replay.Input
	fail    bool
}

func (w *recordWriter) Write(p []byte) error {
	if w.fail {
		return errors.New("disk full")
	}
	in, ok := replay.DecodeLive(p)
	if !ok {
		return errors.New("short record")
	}
	w.records = append(w.records, in)
	return nil
}

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestParseStep(t *testing.T) {
	tests := []struct {
		line     string
		expected Step
	}{
		{"press A", Press(replay.ButtonA, 0)},
		{"PRESS a,right 250ms", Press(replay.ButtonA|replay.ButtonRight, 250*time.Millisecond)},
		{"hold B 2s", Hold(replay.ButtonB, 2*time.Second)},
		{"wait 500ms", Wait(500 * time.Millisecond)},
		{"set A+ZL", Set(replay.Input{Buttons: replay.ButtonA | replay.ButtonZL})},
		{"set - 32767 -1", Set(replay.Input{StickX: 32767, StickY: -1})},
		{"release", Release()},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseStep(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseStep_Errors(t *testing.T) {
	for _, line := range []string{"", "jump", "press", "press TURBO", "hold A", "wait", "wait soon", "set A 1", "set A x 0", "press A 1s extra"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseStep(line)
			assert.ErrorIs(t, err, ErrBadStep)
		})
	}
}

func TestStep_StringParsesBack(t *testing.T) {
	for _, st := range []Step{
		Press(replay.ButtonA|replay.ButtonRight, 0),
		Hold(replay.ButtonB, time.Second),
		Wait(time.Millisecond),
		Set(replay.Input{Buttons: replay.ButtonY, StickX: -5, StickY: 9}),
	} {
		got, err := ParseStep(st.String())
		require.NoError(t, err, st.String())
		assert.Equal(t, st, got)
	}
}

func TestSequencer_PressReleases(t *testing.T) {
	w := &recordWriter{}
	s := NewSequencer(w)
	s.Enqueue(Press(replay.ButtonA, 100*time.Millisecond))
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Advance(t0))
	assert.Equal(t, []replay.Input{{Buttons: replay.ButtonA}}, w.records)
	assert.Equal(t, replay.ButtonA, s.Current().Buttons)

	require.NoError(t, s.Advance(t0.Add(99*time.Millisecond)))
	assert.Len(t, w.records, 1)

	require.NoError(t, s.Advance(t0.Add(100*time.Millisecond)))
	assert.Equal(t, []replay.Input{{Buttons: replay.ButtonA}, {}}, w.records)
	assert.Equal(t, 0, s.Pending())
}

func TestSequencer_Timeline(t *testing.T) {
	w := &recordWriter{}
	s := NewSequencer(w)
	s.Enqueue(
		Hold(replay.ButtonRight, time.Second),
		Wait(200*time.Millisecond),
		Set(replay.Input{StickX: 1000}),
		Press(replay.ButtonB, 50*time.Millisecond),
	)

	require.NoError(t, s.Advance(t0))
	assert.Equal(t, 4, s.Pending())

	// hold ends: release, then the wait starts without writing
	require.NoError(t, s.Advance(t0.Add(time.Second)))
	assert.Equal(t, []replay.Input{{Buttons: replay.ButtonRight}, {}}, w.records)

	// wait ends: the set and the press start in the same advance
	require.NoError(t, s.Advance(t0.Add(1200*time.Millisecond)))
	assert.Equal(t, []replay.Input{
		{Buttons: replay.ButtonRight},
		{},
		{StickX: 1000},
		{Buttons: replay.ButtonB},
	}, w.records)
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Advance(t0.Add(2*time.Second)))
	assert.Equal(t, replay.Input{}, w.records[len(w.records)-1])
	assert.Equal(t, 0, s.Pending())
}

func TestSequencer_Clear(t *testing.T) {
	w := &recordWriter{}
	s := NewSequencer(w)
	s.Enqueue(Hold(replay.ButtonA, time.Minute), Press(replay.ButtonB, 0))
	require.NoError(t, s.Advance(t0))

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, replay.Input{}, s.Current())

	require.NoError(t, s.Advance(t0.Add(time.Hour)))
	assert.Len(t, w.records, 2)
}

func TestSequencer_WriteFailure(t *testing.T) {
	w := &recordWriter{fail: true}
	s := NewSequencer(w)
	s.Enqueue(Press(replay.ButtonA, 0))

	assert.Error(t, s.Advance(t0))
	assert.Equal(t, replay.Input{}, s.Current())
}

func TestSequencer_RunReleasesOnCancel(t *testing.T) {
	w := &recordWriter{}
	s := NewSequencer(w)
	s.Enqueue(Hold(replay.ButtonX, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	require.Eventually(t, func() bool { return s.Current().Buttons == replay.ButtonX }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, replay.Input{}, s.Current())
}

func TestSequencer_WritesLiveResource(t *testing.T) {
	fsys := storage.NewMem()
	out, err := slot.NewFile(fsys, "input.bin", replay.LiveRecordSize)
	require.NoError(t, err)

	s := NewSequencer(out)
	s.Enqueue(Set(replay.Input{Buttons: replay.ButtonA, StickY: -3}))
	require.NoError(t, s.Advance(t0))

	// the core's live poller sees the record
	p := replay.NewLivePoller(fsys, "input.bin", 2, nil)
	in, ok := p.Poll(0)
	require.True(t, ok)
	assert.Equal(t, replay.Input{Buttons: replay.ButtonA, StickY: -3}, in)
}
