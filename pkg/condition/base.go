package condition

import "time"

// Base carries the common condition state: identity, cleanup policy,
// listening flag, observer list, and the last-observed satisfaction value
// that backs the fire-on-flip contract. Concrete conditions embed Base and
// implement Satisfied plus any subscription hooks.
type Base struct {
	id       string
	strategy CleanupStrategy
	timeout  time.Duration
	poll     bool

	listening bool
	last      bool

	observers []observer
	nextObs   int
}

// observer pairs a registration key with its callback so removal does not
// disturb notification order.
type observer struct {
	key int
	fn  func(Condition)
}

// Option configures a Base at construction time.
type Option func(*Base)

// WithCleanup sets the registry cleanup policy.
func WithCleanup(s CleanupStrategy) Option {
	return func(b *Base) { b.strategy = s }
}

// WithTimeout sets the registry timeout. Values below zero are treated as
// disabled.
func WithTimeout(d time.Duration) Option {
	return func(b *Base) {
		if d < 0 {
			d = 0
		}
		b.timeout = d
	}
}

// WithPoll marks the condition as needing the registry's periodic check.
func WithPoll() Option {
	return func(b *Base) { b.poll = true }
}

// NewBase constructs the embeddable condition core.
func NewBase(id string, opts ...Option) Base {
	b := Base{id: id}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *Base) ID() string               { return b.id }
func (b *Base) Listening() bool          { return b.listening }
func (b *Base) NeedsPoll() bool          { return b.poll }
func (b *Base) Cleanup() CleanupStrategy { return b.strategy }
func (b *Base) Timeout() time.Duration   { return b.timeout }

// OnChanged registers an observer. Observers are notified in registration
// order. The returned func removes it.
func (b *Base) OnChanged(fn func(Condition)) func() {
	key := b.nextObs
	b.nextObs++
	b.observers = append(b.observers, observer{key: key, fn: fn})
	return func() {
		for i, o := range b.observers {
			if o.key == key {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// BeginListen flips the listening flag on and captures the current
// satisfaction value as the last-observed baseline. It reports whether the
// call actually transitioned the state, so subscription hooks stay
// idempotent.
func (b *Base) BeginListen(c Condition) bool {
	if b.listening {
		return false
	}
	b.listening = true
	b.last = c.Satisfied()
	return true
}

// EndListen flips the listening flag off. Reports whether it transitioned.
func (b *Base) EndListen() bool {
	if !b.listening {
		return false
	}
	b.listening = false
	return true
}

// Publish re-reads c.Satisfied and notifies observers if the value flipped
// since last observed. Inert unless listening — operations on a condition
// that is not listening are legal but fire no events.
func (b *Base) Publish(c Condition) {
	if !b.listening {
		return
	}
	now := c.Satisfied()
	if now == b.last {
		return
	}
	b.last = now
	// Snapshot so observers may unsubscribe (or unregister the condition)
	// while we iterate.
	fns := make([]func(Condition), 0, len(b.observers))
	for _, o := range b.observers {
		fns = append(fns, o.fn)
	}
	for _, fn := range fns {
		fn(c)
	}
}
