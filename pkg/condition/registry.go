package condition

import (
	"context"
	"log/slog"
	"time"
)

// Default and minimum cadence for the periodic registry tick.
const (
	DefaultTickInterval = 100 * time.Millisecond
	MinTickInterval     = 10 * time.Millisecond
)

// RegistryConfig contains construction options for a Registry.
type RegistryConfig struct {
	// TickInterval is the polling cadence. Zero means DefaultTickInterval;
	// values below MinTickInterval are clamped up.
	TickInterval time.Duration
	Clock        Clock
	Logger       *slog.Logger
}

// Registry is the central store of active conditions. It is the single
// owner of condition listening state: registering starts listening,
// unregistering stops it. Each tick runs the polling checks first and the
// timeout sweep second; satisfied-cleanup is event-driven off the change
// notification, so a condition that becomes satisfied during its own poll
// is removed via the satisfied path before the timeout sweep sees it.
type Registry struct {
	log      *slog.Logger
	clock    Clock
	interval time.Duration

	entries  map[string]*registryEntry
	order    []string
	lastTick time.Time
}

type registryEntry struct {
	cond         Condition
	registeredAt time.Time
	unsub        func()
	timed        bool
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.TickInterval < MinTickInterval {
		cfg.TickInterval = MinTickInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{
		log:      cfg.Logger,
		clock:    cfg.Clock,
		interval: cfg.TickInterval,
		entries:  make(map[string]*registryEntry),
	}
}

// TickInterval returns the effective polling cadence.
func (r *Registry) TickInterval() time.Duration { return r.interval }

// Register records the condition, starts it listening, and enrolls it in
// the polling and timeout sets per its flags. Duplicate ids are a logged
// no-op.
func (r *Registry) Register(c Condition) {
	if c == nil {
		return
	}
	if _, exists := r.entries[c.ID()]; exists {
		r.log.Warn("condition already registered", "id", c.ID())
		return
	}
	e := &registryEntry{
		cond:         c,
		registeredAt: r.clock.Now(),
		timed:        c.Timeout() > 0 && c.Cleanup().OnTimeout(),
	}
	r.entries[c.ID()] = e
	r.order = append(r.order, c.ID())
	c.StartListening()
	e.unsub = c.OnChanged(r.conditionChanged)
	r.log.Debug("condition registered", "id", c.ID(),
		"poll", c.NeedsPoll(), "timeout", c.Timeout(), "cleanup", c.Cleanup().String())
}

// conditionChanged implements the event-driven satisfied-cleanup path.
func (r *Registry) conditionChanged(c Condition) {
	if !c.Satisfied() || !c.Cleanup().OnSatisfied() {
		return
	}
	if _, exists := r.entries[c.ID()]; exists {
		r.log.Debug("condition satisfied, auto-unregistering", "id", c.ID())
		r.Unregister(c.ID())
	}
}

// Unregister removes the condition from all sets and stops it listening.
// Idempotent: unknown ids are a no-op.
func (r *Registry) Unregister(id string) {
	e, exists := r.entries[id]
	if !exists {
		return
	}
	if e.unsub != nil {
		e.unsub()
	}
	delete(r.entries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	e.cond.StopListening()
	r.log.Debug("condition unregistered", "id", id)
}

// Tick runs one evaluation pass at the given time: polling checks first,
// then the timeout sweep. Both phases iterate over snapshots so conditions
// removed mid-pass (satisfied-cleanup fires synchronously inside CheckState)
// never mutate the set being walked.
func (r *Registry) Tick(now time.Time) {
	r.lastTick = now

	// NeedsPoll is re-read each pass: a composite may gain or lose polled
	// children after registration.
	polled := make([]Condition, 0, len(r.order))
	for _, id := range r.order {
		if e := r.entries[id]; e != nil && e.cond.NeedsPoll() {
			polled = append(polled, e.cond)
		}
	}
	for _, c := range polled {
		if _, still := r.entries[c.ID()]; still {
			c.CheckState()
		}
	}

	var expired []string
	for _, id := range r.order {
		e := r.entries[id]
		if e == nil || !e.timed {
			continue
		}
		if now.Sub(e.registeredAt) >= e.cond.Timeout() {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		r.log.Debug("condition timed out", "id", id)
		r.Unregister(id)
	}
}

// MaybeTick runs Tick only if the configured interval has elapsed since the
// previous tick. Hosts driving the registry from a per-frame callback use
// this to keep the documented cadence.
func (r *Registry) MaybeTick(now time.Time) {
	if !r.lastTick.IsZero() && now.Sub(r.lastTick) < r.interval {
		return
	}
	r.Tick(now)
}

// Run drives Tick on the configured interval until ctx is cancelled. For
// hosts without their own frame loop.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Tick(r.clock.Now())
		}
	}
}

// Has reports whether a condition with the id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Get returns the registered condition or nil.
func (r *Registry) Get(id string) Condition {
	if e, ok := r.entries[id]; ok {
		return e.cond
	}
	return nil
}

// Len returns the number of registered conditions.
func (r *Registry) Len() int { return len(r.entries) }

// Satisfied returns the registered conditions that are currently satisfied,
// in registration order.
func (r *Registry) Satisfied() []Condition {
	return r.filter(true)
}

// Unsatisfied returns the registered conditions that are not satisfied, in
// registration order.
func (r *Registry) Unsatisfied() []Condition {
	return r.filter(false)
}

func (r *Registry) filter(want bool) []Condition {
	var out []Condition
	for _, id := range r.order {
		if e := r.entries[id]; e != nil && e.cond.Satisfied() == want {
			out = append(out, e.cond)
		}
	}
	return out
}

// Clear unregisters everything, stopping listeners first.
func (r *Registry) Clear() {
	ids := append([]string(nil), r.order...)
	for _, id := range ids {
		r.Unregister(id)
	}
}
