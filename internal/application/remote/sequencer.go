// Package remote drives the live-input resource from outside the host.
//
// A Sequencer drains a FIFO of timed steps (press, hold, wait, set) and writes
// the resulting controller state as a live-input record. The core picks the
// record up on its next poll, so timing is only as precise as the poll
// interval.
package remote

import (
	"context"
	"sync"
	"time"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
)

// Writer receives encoded live-input records. slot.Slot satisfies it.
type Writer interface {
	Write(p []byte) error
}

// Sequencer runs queued steps against a Writer
type Sequencer struct {
	mu    sync.Mutex
	steps *queue.Queue
	out   Writer

	cur     Step
	active  bool
	until   time.Time
	written replay.Input

	log *zap.Logger
}

// NewSequencer creates an idle sequencer
func NewSequencer(out Writer) *Sequencer {
	return &Sequencer{
		steps: queue.New(),
		out:   out,
		log:   logging.Named("remote"),
	}
}

// Enqueue appends steps to the queue
func (s *Sequencer) Enqueue(steps ...Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range steps {
		s.steps.Add(st)
	}
}

// Pending returns the number of steps not yet finished, including the
// running one
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.steps.Length()
	if s.active {
		n++
	}
	return n
}

// Current returns the input most recently written
func (s *Sequencer) Current() replay.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Clear drops every queued step, aborts the running one and releases input
func (s *Sequencer) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.steps.Length() > 0 {
		s.steps.Remove()
	}
	s.active = false
	return s.write(replay.Input{})
}

// Advance finishes every step due at now and starts the next ones. Steps
// that start together run back to back from now.
func (s *Sequencer) Advance(now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.active {
			if now.Before(s.until) {
				return nil
			}
			s.active = false
			if s.cur.releases() {
				if err := s.write(replay.Input{}); err != nil {
					return err
				}
			}
		}
		if s.steps.Length() == 0 {
			return nil
		}

		st := s.steps.Remove().(Step)
		s.log.Debug("step", zap.Stringer("step", st))
		if st.Kind != KindWait {
			if err := s.write(st.Input); err != nil {
				return err
			}
		}
		s.cur = st
		s.active = true
		s.until = now.Add(st.Duration)
	}
}

// Run advances the sequencer every interval until ctx is done, then
// releases any held input
func (s *Sequencer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.Clear(); err != nil {
				s.log.Warn("release on shutdown failed", zap.Error(err))
			}
			return ctx.Err()
		case now := <-ticker.C:
			if err := s.Advance(now); err != nil {
				s.log.Warn("live input write failed", zap.Error(err))
			}
		}
	}
}

func (s *Sequencer) write(in replay.Input) error {
	if err := s.out.Write(replay.EncodeLive(in)); err != nil {
		return err
	}
	s.written = in
	return nil
}
