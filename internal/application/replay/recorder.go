package replay

import "github.com/younwookim/tickhook/internal/infrastructure/logchan"

// Recorder writes effective input as a sparse script: a line is emitted only
// when the input differs from the previous one. The output is a valid script.
type Recorder struct {
	ch        *logchan.Channel
	last      Input
	started   bool
	recording bool
	count     int
}

// NewRecorder creates a recorder writing to ch and emits the header line
func NewRecorder(ch *logchan.Channel) *Recorder {
	ch.AppendString("tick,buttons,stick_x,stick_y\n")
	return &Recorder{ch: ch, recording: true}
}

// Record logs in at tick if it changed
func (r *Recorder) Record(tick uint32, in Input) {
	if !r.recording {
		return
	}
	if r.started && in == r.last {
		return
	}
	r.started = true
	r.last = in
	r.count++
	r.ch.Appendf("%d,%#x,%d,%d\n", tick, in.Buttons, in.StickX, in.StickY)
}

// Stop stops recording
func (r *Recorder) Stop() {
	r.recording = false
}

// IsRecording returns whether recording is active
func (r *Recorder) IsRecording() bool {
	return r.recording
}

// KeyframeCount returns the number of keyframes written
func (r *Recorder) KeyframeCount() int {
	return r.count
}
