package guide

import (
	"time"

	"github.com/tourwright/tourwright/pkg/condition"
)

// ItemConfig describes one tour step at authoring time.
type ItemConfig struct {
	ID          string
	Description string
	// Priority is consulted only by priority-based selection strategies.
	Priority int

	// WaitingTimeout bounds time spent in Waiting; RunningTimeout bounds
	// time spent in Active. Zero disables either. Expiry is a first-class
	// Failed transition, not an error.
	WaitingTimeout time.Duration
	RunningTimeout time.Duration

	// AutoStart begins the item as soon as its trigger is satisfied.
	// AutoComplete finishes it when the completion condition is satisfied
	// or the effect signals completion, whichever fires first.
	AutoStart    bool
	AutoComplete bool

	// Trigger gates Waiting -> Active; Completion gates Active ->
	// Completed. Both optional: a nil trigger counts as satisfied, a nil
	// completion leaves finishing to the effect or an explicit Complete.
	Trigger    condition.Condition
	Completion condition.Condition

	// Effect is the step's presentation. Nil gets a NopEffect.
	Effect Effect
}

// Item is the per-step state machine. It owns its conditions' registry
// membership for the span of one activation: Enter registers them, any
// terminal transition unregisters them.
type Item struct {
	env *Env
	cfg ItemConfig

	state  ItemState
	effect Effect

	enteredWaitingAt time.Time
	enteredActiveAt  time.Time
	duration         time.Duration
	effectPlaying    bool

	triggerUnsub    func()
	completionUnsub func()
	effectUnsub     func()

	stateChanged signal[ItemTransition]
	completed    signal[*Item]
	cancelled    signal[*Item]
	failed       signal[*Item]
}

// NewItem builds an item bound to env. A nil env gets defaults so a broken
// call site degrades to a working, if silent, item.
func NewItem(env *Env, cfg ItemConfig) *Item {
	if env == nil {
		env = NewEnv(EnvConfig{})
	}
	it := &Item{env: env, cfg: cfg, state: ItemInactive, effect: cfg.Effect}
	if it.effect == nil {
		it.effect = &NopEffect{}
	}
	return it
}

func (it *Item) ID() string              { return it.cfg.ID }
func (it *Item) Description() string     { return it.cfg.Description }
func (it *Item) Priority() int           { return it.cfg.Priority }
func (it *Item) State() ItemState        { return it.state }
func (it *Item) AutoStart() bool         { return it.cfg.AutoStart }
func (it *Item) AutoComplete() bool      { return it.cfg.AutoComplete }
func (it *Item) Duration() time.Duration { return it.duration }

// Trigger returns the trigger condition (may be nil).
func (it *Item) Trigger() condition.Condition { return it.cfg.Trigger }

// Completion returns the completion condition (may be nil).
func (it *Item) Completion() condition.Condition { return it.cfg.Completion }

// OnStateChanged registers a transition observer.
func (it *Item) OnStateChanged(fn func(ItemTransition)) func() { return it.stateChanged.add(fn) }

// OnCompleted registers a completion observer.
func (it *Item) OnCompleted(fn func(*Item)) func() { return it.completed.add(fn) }

// OnCancelled registers a cancellation observer.
func (it *Item) OnCancelled(fn func(*Item)) func() { return it.cancelled.add(fn) }

// OnFailed registers a failure observer.
func (it *Item) OnFailed(fn func(*Item)) func() { return it.failed.add(fn) }

func (it *Item) setState(to ItemState) {
	from := it.state
	if from == to {
		return
	}
	it.state = to
	it.env.Log.Debug("item transition", "item", it.cfg.ID, "from", from.String(), "to", to.String())
	it.stateChanged.emit(ItemTransition{Item: it, From: from, To: to})
}

// Init is an idempotent no-op kept for lifecycle symmetry with Group.
func (it *Item) Init() {}

// Enter moves the item into Waiting: registers its conditions, starts the
// waiting timer, and — when the trigger is already satisfied and AutoStart
// is set — transitions synchronously to Active without waiting for a tick.
// Legal from Inactive; from Waiting it is a no-op; anything else is a
// logged usage error.
func (it *Item) Enter() {
	switch it.state {
	case ItemWaiting:
		return
	case ItemInactive:
	default:
		it.env.Log.Warn("enter ignored: illegal state", "item", it.cfg.ID, "state", it.state.String())
		return
	}

	if c := it.cfg.Trigger; c != nil {
		it.env.Conditions.Register(c)
		it.triggerUnsub = c.OnChanged(it.triggerChanged)
	}
	if c := it.cfg.Completion; c != nil {
		it.env.Conditions.Register(c)
		it.completionUnsub = c.OnChanged(it.completionChanged)
	}

	it.enteredWaitingAt = it.env.Clock.Now()
	it.setState(ItemWaiting)

	if it.cfg.AutoStart && it.triggerSatisfied() {
		it.Start()
	}
}

// triggerSatisfied treats a missing trigger as an open gate.
func (it *Item) triggerSatisfied() bool {
	return it.cfg.Trigger == nil || it.cfg.Trigger.Satisfied()
}

// Start moves the item into Active and plays its effect. Legal only from
// Waiting.
func (it *Item) Start() {
	if it.state != ItemWaiting {
		it.env.Log.Warn("start ignored: illegal state", "item", it.cfg.ID, "state", it.state.String())
		return
	}
	it.enteredActiveAt = it.env.Clock.Now()
	it.setState(ItemActive)
	it.effectUnsub = it.effect.OnCompleted(it.effectCompleted)
	it.playEffect()
}

// Complete finishes the item. Legal only from Active.
func (it *Item) Complete() {
	if it.state != ItemActive {
		it.env.Log.Warn("complete ignored: illegal state", "item", it.cfg.ID, "state", it.state.String())
		return
	}
	it.stopEffect()
	it.duration = it.env.Clock.Now().Sub(it.enteredActiveAt)
	it.detachConditions()
	it.setState(ItemCompleted)
	it.completed.emit(it)
}

// Fail moves a non-terminal item to Failed. Timeout expiry lands here.
func (it *Item) Fail() {
	if it.state.Terminal() {
		it.env.Log.Warn("fail ignored: terminal state", "item", it.cfg.ID, "state", it.state.String())
		return
	}
	it.stopEffect()
	it.detachConditions()
	it.setState(ItemFailed)
	it.failed.emit(it)
}

// Cancel aborts the item from any state. No-op when already Completed or
// Cancelled.
func (it *Item) Cancel() {
	if it.state == ItemCompleted || it.state == ItemCancelled {
		return
	}
	it.stopEffect()
	it.detachConditions()
	it.setState(ItemCancelled)
	it.cancelled.emit(it)
}

// Reset returns the item to Inactive, cancelling first if it is still in
// flight, and clears timers, duration, and effect bookkeeping.
func (it *Item) Reset() {
	if !it.state.Terminal() && it.state != ItemInactive {
		it.Cancel()
	}
	it.enteredWaitingAt = time.Time{}
	it.enteredActiveAt = time.Time{}
	it.duration = 0
	it.effectPlaying = false
	it.setState(ItemInactive)
}

// Update performs the timeout checks. Only meaningful in Waiting/Active.
func (it *Item) Update(now time.Time) {
	switch it.state {
	case ItemWaiting:
		if d := it.cfg.WaitingTimeout; d > 0 && now.Sub(it.enteredWaitingAt) >= d {
			it.env.Log.Info("item waiting timeout", "item", it.cfg.ID, "timeout", d)
			it.Fail()
		}
	case ItemActive:
		if d := it.cfg.RunningTimeout; d > 0 && now.Sub(it.enteredActiveAt) >= d {
			it.env.Log.Info("item running timeout", "item", it.cfg.ID, "timeout", d)
			it.Fail()
		}
	}
}

// PauseEffect forwards a pause to the effect without changing item state;
// pausing is a group-level concept layered on top.
func (it *Item) PauseEffect() {
	if !it.effectPlaying {
		return
	}
	if err := it.effect.Pause(); err != nil {
		it.env.Log.Error("effect pause failed", "item", it.cfg.ID, "err", err)
	}
}

// ResumeEffect forwards a resume to the effect.
func (it *Item) ResumeEffect() {
	if !it.effectPlaying {
		return
	}
	if err := it.effect.Resume(); err != nil {
		it.env.Log.Error("effect resume failed", "item", it.cfg.ID, "err", err)
	}
}

func (it *Item) playEffect() {
	if err := it.effect.Play(); err != nil {
		it.env.Log.Error("effect play failed", "item", it.cfg.ID, "err", err)
		it.effectPlaying = false
		return
	}
	// Play may signal completion synchronously, finishing the item before
	// we return; only mark the effect live if the item is still Active.
	if it.state == ItemActive {
		it.effectPlaying = true
	}
}

func (it *Item) stopEffect() {
	if it.effectUnsub != nil {
		it.effectUnsub()
		it.effectUnsub = nil
	}
	if !it.effectPlaying {
		return
	}
	it.effectPlaying = false
	if err := it.effect.Stop(); err != nil {
		it.env.Log.Error("effect stop failed", "item", it.cfg.ID, "err", err)
	}
}

func (it *Item) detachConditions() {
	if it.triggerUnsub != nil {
		it.triggerUnsub()
		it.triggerUnsub = nil
	}
	if it.completionUnsub != nil {
		it.completionUnsub()
		it.completionUnsub = nil
	}
	if c := it.cfg.Trigger; c != nil {
		it.env.Conditions.Unregister(c.ID())
	}
	if c := it.cfg.Completion; c != nil {
		it.env.Conditions.Unregister(c.ID())
	}
}

// triggerChanged drives the auto-start path while Waiting.
func (it *Item) triggerChanged(c condition.Condition) {
	if it.state == ItemWaiting && it.cfg.AutoStart && c.Satisfied() {
		it.Start()
	}
}

// completionChanged drives one of the two auto-complete paths while Active.
// The effect's completion signal is the other; whichever fires first wins
// and the state guard turns the loser into a no-op.
func (it *Item) completionChanged(c condition.Condition) {
	if it.state == ItemActive && it.cfg.AutoComplete && c.Satisfied() {
		it.Complete()
	}
}

func (it *Item) effectCompleted() {
	if it.state == ItemActive && it.cfg.AutoComplete {
		it.Complete()
	}
}
