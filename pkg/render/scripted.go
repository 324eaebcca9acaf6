package render

import (
	"time"

	"github.com/tourwright/tourwright/pkg/guide"
)

// Scripted is a headless effect that signals completion after a fixed
// duration of played (unpaused) time. The host drives it with Tick from
// the same loop that updates the manager; with a zero duration it behaves
// like a NopEffect and never completes.
type Scripted struct {
	guide.CompletionSignal

	duration time.Duration
	playing  bool
	paused   bool
	elapsed  time.Duration
	lastTick time.Time
}

// NewScripted creates a scripted effect with the given play duration.
func NewScripted(duration time.Duration) *Scripted {
	return &Scripted{duration: duration}
}

func (s *Scripted) Play() error {
	s.playing = true
	s.paused = false
	s.elapsed = 0
	s.lastTick = time.Time{}
	return nil
}

func (s *Scripted) Stop() error {
	s.playing = false
	s.paused = false
	return nil
}

func (s *Scripted) Pause() error {
	if s.playing {
		s.paused = true
	}
	return nil
}

func (s *Scripted) Resume() error {
	if s.playing {
		s.paused = false
	}
	return nil
}

// Playing reports whether the effect is live.
func (s *Scripted) Playing() bool { return s.playing }

// Tick advances the effect. Paused time does not count toward the play
// duration; once enough unpaused time accumulates, the effect stops and
// signals completion.
func (s *Scripted) Tick(now time.Time) {
	if !s.playing || s.duration <= 0 {
		return
	}
	if s.lastTick.IsZero() {
		s.lastTick = now
		return
	}
	dt := now.Sub(s.lastTick)
	s.lastTick = now
	if s.paused {
		return
	}
	s.elapsed += dt
	if s.elapsed >= s.duration {
		s.playing = false
		s.SignalCompleted()
	}
}
