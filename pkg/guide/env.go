// Package guide implements the guided-tour orchestration core: the per-step
// state machine (Item), the per-sequence controller (Group), and the thin
// coordinator (Manager) that drives groups through their per-tick update.
//
// Everything here runs on one logical tick: there is no internal locking,
// and external event sources (UI callbacks, effect completion) are expected
// to dispatch onto the same goroutine that calls Update.
package guide

import (
	"log/slog"

	"github.com/tourwright/tourwright/pkg/condition"
)

// Env is the explicitly constructed context shared by items, groups, and
// the manager: the monotonic clock, the logger, and the condition registry
// that owns all listening state. There are no package-level singletons; the
// host creates one Env at startup and tears it down with the tour system.
type Env struct {
	Clock      condition.Clock
	Log        *slog.Logger
	Conditions *condition.Registry
}

// EnvConfig contains construction options for an Env. Zero values select
// the system clock, the default slog logger, and a fresh registry on the
// default tick cadence.
type EnvConfig struct {
	Clock      condition.Clock
	Logger     *slog.Logger
	Conditions *condition.Registry
}

// NewEnv builds an Env, filling unset fields with defaults.
func NewEnv(cfg EnvConfig) *Env {
	if cfg.Clock == nil {
		cfg.Clock = condition.SystemClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Conditions == nil {
		cfg.Conditions = condition.NewRegistry(condition.RegistryConfig{
			Clock:  cfg.Clock,
			Logger: cfg.Logger,
		})
	}
	return &Env{
		Clock:      cfg.Clock,
		Log:        cfg.Logger,
		Conditions: cfg.Conditions,
	}
}
