package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tourwright/tourwright/pkg/condition"
)

// TestScriptedCompletesAfterDuration verifies the effect signals exactly
// once after the configured play time elapses.
func TestScriptedCompletesAfterDuration(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	s := NewScripted(2 * time.Second)

	completions := 0
	s.OnCompleted(func() { completions++ })

	if err := s.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	s.Tick(clock.Now()) // baseline tick
	s.Tick(clock.Advance(time.Second))
	if completions != 0 || !s.Playing() {
		t.Fatalf("completed early: completions=%d playing=%v", completions, s.Playing())
	}
	s.Tick(clock.Advance(time.Second))
	if completions != 1 || s.Playing() {
		t.Fatalf("after full duration: completions=%d playing=%v, want 1/false", completions, s.Playing())
	}

	// Further ticks on a finished effect are inert.
	s.Tick(clock.Advance(time.Second))
	if completions != 1 {
		t.Fatalf("completions = %d after extra tick, want 1", completions)
	}
}

// TestScriptedPauseStretchesPlayTime verifies paused time does not count
// toward the duration.
func TestScriptedPauseStretchesPlayTime(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	s := NewScripted(time.Second)

	completions := 0
	s.OnCompleted(func() { completions++ })

	s.Play()
	s.Tick(clock.Now())
	s.Tick(clock.Advance(500 * time.Millisecond))

	s.Pause()
	s.Tick(clock.Advance(time.Hour))
	if completions != 0 {
		t.Fatal("completed while paused")
	}

	s.Resume()
	s.Tick(clock.Advance(499 * time.Millisecond))
	if completions != 0 {
		t.Fatal("completed before the unpaused time added up")
	}
	s.Tick(clock.Advance(time.Millisecond))
	if completions != 1 {
		t.Fatalf("completions = %d, want 1", completions)
	}
}

// TestScriptedStopPreventsCompletion verifies Stop halts the effect for good.
func TestScriptedStopPreventsCompletion(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	s := NewScripted(time.Second)

	completions := 0
	s.OnCompleted(func() { completions++ })

	s.Play()
	s.Tick(clock.Now())
	s.Stop()
	s.Tick(clock.Advance(time.Hour))
	if completions != 0 || s.Playing() {
		t.Fatalf("stopped effect completed: completions=%d playing=%v", completions, s.Playing())
	}
}

// TestScriptedZeroDurationNeverCompletes verifies the NopEffect-like
// degenerate case.
func TestScriptedZeroDurationNeverCompletes(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	s := NewScripted(0)

	completions := 0
	s.OnCompleted(func() { completions++ })

	s.Play()
	s.Tick(clock.Now())
	s.Tick(clock.Advance(time.Hour))
	if completions != 0 {
		t.Fatal("zero-duration effect completed")
	}
}

// TestPanelRendersTitleAndBody verifies Play writes the panel and Finish
// signals exactly once.
func TestPanelRendersTitleAndBody(t *testing.T) {
	var buf bytes.Buffer
	p := NewPanel(&buf, "Settings", "Click the **gear** icon.", 40)

	completions := 0
	p.OnCompleted(func() { completions++ })

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Settings") {
		t.Fatalf("panel output missing title:\n%s", out)
	}
	if !strings.Contains(out, "gear") {
		t.Fatalf("panel output missing body:\n%s", out)
	}

	p.Finish()
	p.Finish()
	if completions != 1 {
		t.Fatalf("completions = %d, want 1 (Finish must be idempotent)", completions)
	}
}

// TestPanelFinishBeforePlayIsInert verifies Finish on an unplayed panel
// signals nothing.
func TestPanelFinishBeforePlayIsInert(t *testing.T) {
	p := NewPanel(&bytes.Buffer{}, "t", "", 0)
	completions := 0
	p.OnCompleted(func() { completions++ })
	p.Finish()
	if completions != 0 {
		t.Fatal("Finish before Play signalled completion")
	}
}
