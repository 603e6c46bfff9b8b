package replay

import (
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// DefaultPollInterval reads the live-input resource every other tick
const DefaultPollInterval = 2

// LivePoller reads the live-input resource written by an external controller.
// The resource is read at most once per tick on ticks divisible by the poll
// interval; between reads the last result stays in effect.
type LivePoller struct {
	fsys     storage.FS
	name     string
	interval uint32

	polled   bool
	lastTick uint32
	cur      Input
	ok       bool

	reads int
	log   *zap.Logger
}

// NewLivePoller creates a poller for name
func NewLivePoller(fsys storage.FS, name string, interval uint32, log *zap.Logger) *LivePoller {
	if interval == 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LivePoller{fsys: fsys, name: name, interval: interval, log: log}
}

// Poll returns the live input for tick. ok is false when the resource was
// missing or short at the last read, which means no override.
func (l *LivePoller) Poll(tick uint32) (in Input, ok bool) {
	if (!l.polled || tick != l.lastTick) && tick%l.interval == 0 {
		l.polled = true
		l.lastTick = tick
		l.cur, l.ok = l.read()
	}
	return l.cur, l.ok
}

// Reads returns how many times the resource has been read
func (l *LivePoller) Reads() int {
	return l.reads
}

func (l *LivePoller) read() (Input, bool) {
	l.reads++
	data, _, err := storage.ReadFile(l.fsys, l.name, LiveRecordSize)
	if err != nil {
		return Input{}, false
	}
	in, ok := DecodeLive(data)
	if !ok {
		l.log.Debug("short live-input record", zap.String("name", l.name), zap.Int("len", len(data)))
	}
	return in, ok
}
