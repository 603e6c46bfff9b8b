package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/tracking"
	"github.com/younwookim/tickhook/internal/infrastructure/config"
	"github.com/younwookim/tickhook/internal/infrastructure/hostmem"
	"github.com/younwookim/tickhook/internal/infrastructure/logchan"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

const objAt = 0x2000000000

var testCheck = hostmem.Range{Min: 0x1000000, Max: 0x8000000000}.Check

type phaseSeq struct {
	phase int32
}

func (p *phaseSeq) Read() int32 { return p.phase }

func channel(fsys storage.FS, name string) *logchan.Channel {
	ch := logchan.New(fsys, 4096)
	ch.Init(name)
	return ch
}

func lines(t *testing.T, fsys *storage.Mem, name string) []string {
	t.Helper()
	data, ok := fsys.Bytes(name)
	require.True(t, ok)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestPhaseLogger(t *testing.T) {
	fsys := storage.NewMem()
	ch := channel(fsys, "game_phase.csv")
	src := &phaseSeq{phase: -1}
	p := NewPhaseLogger(src, ch)
	assert.Equal(t, "phase", p.Name())

	p.Tick(0)
	src.phase = 3
	p.Tick(1)
	p.Tick(2)
	src.phase = 4
	p.Tick(3)
	src.phase = -1
	p.Tick(4)
	ch.Flush()

	assert.Equal(t, []string{
		"tick,old_phase,new_phase",
		"1,-1,3",
		"3,3,4",
		"4,4,-1",
	}, lines(t, fsys, "game_phase.csv"))
	assert.Equal(t, int32(-1), p.Last())
}

func TestEnabled(t *testing.T) {
	fsys := storage.NewMem()
	assert.False(t, Enabled(fsys, "sim_trace_enabled"))
	fsys.Put("sim_trace_enabled", nil)
	assert.True(t, Enabled(fsys, "sim_trace_enabled"))
	assert.False(t, Enabled(fsys, ""))
}

func TestSimTrace(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	l := tracking.LayoutFromConfig(cfg.Layout.Object)

	img := hostmem.NewImage(0x7100000000)
	require.NoError(t, img.Map(objAt, 0x1000))
	require.NoError(t, hostmem.PutF32(img, objAt+l.PosX, 10))
	require.NoError(t, hostmem.PutF32(img, objAt+l.Gravity, -0.5))
	require.NoError(t, hostmem.PutF32(img, objAt+l.TerminalVel, -4))
	require.NoError(t, hostmem.PutU32(img, objAt+l.CurState, 1))

	fsys := storage.NewMem()
	ch := channel(fsys, "sim_trace.csv")
	reg := tracking.NewRegistry()
	phase := &phaseSeq{phase: 3}

	st := NewSimTrace(SimTraceOptions{
		Registry: reg,
		Phase:    phase,
		Phases:   []int32{3, 4},
		Space:    img,
		Check:    testCheck,
		Layout:   l,
		Buttons:  ButtonsFunc(func() uint64 { return 0x4001 }),
	}, ch)
	assert.Equal(t, "simtrace", st.Name())

	st.Tick(0) // no handle
	reg.Observe(objAt, 1)
	st.Tick(1)
	phase.phase = 2
	st.Tick(2) // not a traced phase
	phase.phase = 4
	st.Tick(3)
	ch.Flush()

	got := lines(t, fsys, "sim_trace.csv")
	require.Len(t, got, 3)
	assert.Equal(t, strings.TrimSpace(simTraceHeader), got[0])
	assert.Equal(t, "1,10.0000,0.0000,0.0000,0.0000,1,0,0,-0.500000,-4.0000,0x4001", got[1])
	assert.True(t, strings.HasPrefix(got[2], "3,"))
}
