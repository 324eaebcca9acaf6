// Package condition implements the boolean condition subsystem: atomic and
// composite conditions with a listening lifecycle, change notification, and a
// registry that owns polling and timeout-based cleanup.
//
// The package is single-threaded by design: conditions and the registry are
// mutated from one logical tick loop, and external event sources are expected
// to dispatch onto that same loop. Callers that cross goroutines must
// synchronize externally.
package condition

import (
	"strings"
	"time"
)

// CleanupStrategy governs when the registry automatically unregisters a
// condition. Satisfied and timeout are independent bits and may be combined.
type CleanupStrategy uint8

const (
	// Manual means the condition stays registered until explicitly removed.
	Manual CleanupStrategy = 0
	// AutoOnSatisfied unregisters the condition as soon as it becomes satisfied.
	AutoOnSatisfied CleanupStrategy = 1 << 0
	// AutoOnTimeout unregisters the condition once its timeout elapses.
	AutoOnTimeout CleanupStrategy = 1 << 1
	// AutoOnSatisfiedOrTimeout combines both automatic cleanup paths.
	AutoOnSatisfiedOrTimeout CleanupStrategy = AutoOnSatisfied | AutoOnTimeout
	// Persistent marks a condition that is never auto-removed, even if its
	// strategy bits would otherwise apply.
	Persistent CleanupStrategy = 1 << 2
)

// OnSatisfied reports whether the satisfied-cleanup bit is set.
func (s CleanupStrategy) OnSatisfied() bool {
	return s&Persistent == 0 && s&AutoOnSatisfied != 0
}

// OnTimeout reports whether the timeout-cleanup bit is set.
func (s CleanupStrategy) OnTimeout() bool {
	return s&Persistent == 0 && s&AutoOnTimeout != 0
}

func (s CleanupStrategy) String() string {
	if s&Persistent != 0 {
		return "persistent"
	}
	var parts []string
	if s&AutoOnSatisfied != 0 {
		parts = append(parts, "auto_on_satisfied")
	}
	if s&AutoOnTimeout != 0 {
		parts = append(parts, "auto_on_timeout")
	}
	if len(parts) == 0 {
		return "manual"
	}
	return strings.Join(parts, "|")
}

// ParseCleanupStrategy parses the textual form used in tour documents.
func ParseCleanupStrategy(s string) (CleanupStrategy, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "", "manual":
		return Manual, true
	case "auto_on_satisfied":
		return AutoOnSatisfied, true
	case "auto_on_timeout":
		return AutoOnTimeout, true
	case "auto_on_satisfied_or_timeout", "auto":
		return AutoOnSatisfiedOrTimeout, true
	case "persistent":
		return Persistent, true
	}
	return Manual, false
}

// Condition is a named boolean predicate with a listening lifecycle.
//
// Satisfied must be a side-effect-free read. Change callbacks fire only while
// the condition is listening, and only on an actual flip of the satisfaction
// value as last observed. Conditions never return errors: a broken or inert
// condition degrades to unsatisfied.
type Condition interface {
	// ID is the stable identifier used for registry lookup. It must be
	// unique among concurrently registered conditions.
	ID() string

	// Satisfied re-derives the current satisfaction value.
	Satisfied() bool

	// Listening reports whether the condition is subscribed to its
	// underlying change source.
	Listening() bool

	// StartListening and StopListening toggle the listening state
	// idempotently and run any subscription hooks.
	StartListening()
	StopListening()

	// NeedsPoll reports whether satisfaction can change without an
	// external push, requiring the registry's periodic check.
	NeedsPoll() bool

	// CheckState re-derives satisfaction and publishes a change
	// notification if the value flipped since last observed. Called by the
	// registry's polling tick for conditions with NeedsPoll.
	CheckState()

	// OnChanged registers a change observer and returns its remove func.
	OnChanged(fn func(Condition)) (remove func())

	// Cleanup returns the registry cleanup policy for this condition.
	Cleanup() CleanupStrategy

	// Timeout returns the registry timeout (0 = disabled).
	Timeout() time.Duration
}

// Clock is the monotonic time source injected into the registry and the
// guide engine. The zero-dependency default is SystemClock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }

// ManualClock is a Clock its owner advances explicitly. Interactive and
// headless drivers use it so tour time moves with commands instead of
// wall time.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward and returns the new time.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}
