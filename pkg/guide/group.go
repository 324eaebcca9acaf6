package guide

import (
	"fmt"
	"time"
)

// GroupConfig describes one tour sequence at authoring time.
type GroupConfig struct {
	ID          string
	Name        string
	Description string
	CanPause    bool
	CanResume   bool
	// Strategy selects the next item(s) to drive. Nil means Sequential.
	Strategy SelectionStrategy
}

// ItemFailure reports an item failing while its group drove it.
type ItemFailure struct {
	Group *Group
	Item  *Item
}

// Group is the sequence controller: it owns an ordered list of items,
// drives them through the item state machine one at a time (under the
// default strategy), and aggregates their outcomes into a group state.
// The current item is tracked by index into the owned slice; there is no
// aliasing pointer to disown.
type Group struct {
	env      *Env
	cfg      GroupConfig
	strategy SelectionStrategy

	items     []*Item
	itemSubs  map[string][]func()
	state     GroupState
	current   int
	startedAt time.Time

	started        signal[*Group]
	finished       signal[*Group]
	paused         signal[*Group]
	resumed        signal[*Group]
	cancelledSig   signal[*Group]
	failedSig      signal[*Group]
	stateChanged   signal[GroupTransition]
	currentChanged signal[CurrentItemChange]
	itemFailed     signal[ItemFailure]
}

// NewGroup builds an empty group bound to env.
func NewGroup(env *Env, cfg GroupConfig) *Group {
	if env == nil {
		env = NewEnv(EnvConfig{})
	}
	strategy := cfg.Strategy
	if strategy == nil {
		strategy = Sequential{}
	}
	return &Group{
		env:      env,
		cfg:      cfg,
		strategy: strategy,
		itemSubs: make(map[string][]func()),
		state:    GroupInactive,
		current:  -1,
	}
}

func (g *Group) ID() string          { return g.cfg.ID }
func (g *Group) Name() string        { return g.cfg.Name }
func (g *Group) Description() string { return g.cfg.Description }
func (g *Group) CanPause() bool      { return g.cfg.CanPause }
func (g *Group) CanResume() bool     { return g.cfg.CanResume }
func (g *Group) State() GroupState   { return g.state }
func (g *Group) Strategy() string    { return g.strategy.Name() }

// Items returns the owned item list in insertion order.
func (g *Group) Items() []*Item { return g.items }

// CurrentIndex returns the index of the current item, -1 when none.
func (g *Group) CurrentIndex() int { return g.current }

// CurrentItem resolves the current index against the owned list.
func (g *Group) CurrentItem() *Item {
	if g.current < 0 || g.current >= len(g.items) {
		return nil
	}
	return g.items[g.current]
}

// Item returns the owned item with the given id, or nil.
func (g *Group) Item(id string) *Item {
	for _, it := range g.items {
		if it.ID() == id {
			return it
		}
	}
	return nil
}

// OnStarted registers an observer for the group starting.
func (g *Group) OnStarted(fn func(*Group)) func() { return g.started.add(fn) }

// OnCompleted registers an observer for the group completing.
func (g *Group) OnCompleted(fn func(*Group)) func() { return g.finished.add(fn) }

// OnPaused registers an observer for the group pausing.
func (g *Group) OnPaused(fn func(*Group)) func() { return g.paused.add(fn) }

// OnResumed registers an observer for the group resuming.
func (g *Group) OnResumed(fn func(*Group)) func() { return g.resumed.add(fn) }

// OnCancelled registers an observer for the group being stopped.
func (g *Group) OnCancelled(fn func(*Group)) func() { return g.cancelledSig.add(fn) }

// OnFailed registers an observer for the group failing.
func (g *Group) OnFailed(fn func(*Group)) func() { return g.failedSig.add(fn) }

// OnStateChanged registers a transition observer.
func (g *Group) OnStateChanged(fn func(GroupTransition)) func() { return g.stateChanged.add(fn) }

// OnCurrentItemChanged registers an observer for advancement.
func (g *Group) OnCurrentItemChanged(fn func(CurrentItemChange)) func() {
	return g.currentChanged.add(fn)
}

// OnItemFailed registers an observer for per-item failures.
func (g *Group) OnItemFailed(fn func(ItemFailure)) func() { return g.itemFailed.add(fn) }

func (g *Group) setState(to GroupState) {
	from := g.state
	if from == to {
		return
	}
	g.state = to
	g.env.Log.Debug("group transition", "group", g.cfg.ID, "from", from.String(), "to", to.String())
	g.stateChanged.emit(GroupTransition{Group: g, From: from, To: to})
}

// AddItem appends an item and subscribes to its terminal events. Duplicate
// ids are a logged no-op.
func (g *Group) AddItem(it *Item) {
	if it == nil {
		g.env.Log.Warn("add item ignored: nil item", "group", g.cfg.ID)
		return
	}
	if g.Item(it.ID()) != nil {
		g.env.Log.Warn("add item ignored: duplicate id", "group", g.cfg.ID, "item", it.ID())
		return
	}
	g.items = append(g.items, it)
	g.itemSubs[it.ID()] = []func(){
		it.OnCompleted(g.itemFinished),
		it.OnCancelled(g.itemFinished),
		it.OnFailed(g.itemFinished),
	}
}

// RemoveItem detaches an item. Removing the current item cancels it first,
// which triggers advancement before the item leaves the list.
func (g *Group) RemoveItem(id string) {
	it := g.Item(id)
	if it == nil {
		return
	}
	if g.CurrentItem() == it && !it.State().Terminal() {
		it.Cancel()
	}
	cur := g.CurrentItem()
	for _, unsub := range g.itemSubs[id] {
		unsub()
	}
	delete(g.itemSubs, id)
	for i, existing := range g.items {
		if existing == it {
			g.items = append(g.items[:i], g.items[i+1:]...)
			break
		}
	}
	// Re-resolve the current index after the removal shifted the list.
	g.current = -1
	for i, existing := range g.items {
		if existing == cur {
			g.current = i
			break
		}
	}
}

// Init moves the group from Inactive to Waiting.
func (g *Group) Init() {
	if g.state != GroupInactive {
		g.env.Log.Warn("init ignored: illegal state", "group", g.cfg.ID, "state", g.state.String())
		return
	}
	g.setState(GroupWaiting)
}

// Start begins driving the sequence. Illegal if the item list is empty or
// the group is not Waiting.
func (g *Group) Start() {
	if len(g.items) == 0 {
		g.env.Log.Warn("start ignored: no items", "group", g.cfg.ID)
		return
	}
	if g.state != GroupWaiting {
		g.env.Log.Warn("start ignored: illegal state", "group", g.cfg.ID, "state", g.state.String())
		return
	}
	g.startedAt = g.env.Clock.Now()
	g.setState(GroupRunning)
	g.started.emit(g)
	g.advanceFrom(-1)
}

// Pause suspends the group and its in-flight effects.
func (g *Group) Pause() {
	if !g.cfg.CanPause {
		g.env.Log.Warn("pause ignored: group not pausable", "group", g.cfg.ID)
		return
	}
	if g.state != GroupRunning {
		g.env.Log.Warn("pause ignored: illegal state", "group", g.cfg.ID, "state", g.state.String())
		return
	}
	g.setState(GroupPaused)
	for _, it := range g.inFlight() {
		it.PauseEffect()
	}
	g.paused.emit(g)
}

// Resume continues a paused group.
func (g *Group) Resume() {
	if !g.cfg.CanResume {
		g.env.Log.Warn("resume ignored: group not resumable", "group", g.cfg.ID)
		return
	}
	if g.state != GroupPaused {
		g.env.Log.Warn("resume ignored: illegal state", "group", g.cfg.ID, "state", g.state.String())
		return
	}
	g.setState(GroupRunning)
	for _, it := range g.inFlight() {
		it.ResumeEffect()
	}
	g.resumed.emit(g)
}

// Stop cancels the group. No-op when Inactive or already terminal.
func (g *Group) Stop() {
	if g.state != GroupWaiting && g.state != GroupRunning && g.state != GroupPaused {
		return
	}
	// Terminal state first so item cancellations don't trigger advancement.
	g.setState(GroupCancelled)
	for _, it := range g.inFlight() {
		it.Cancel()
	}
	g.current = -1
	g.cancelledSig.emit(g)
}

// Fail marks the group failed, with the same guards as Stop.
func (g *Group) Fail() {
	if g.state != GroupWaiting && g.state != GroupRunning && g.state != GroupPaused {
		return
	}
	g.setState(GroupFailed)
	for _, it := range g.inFlight() {
		it.Cancel()
	}
	g.current = -1
	g.failedSig.emit(g)
}

// Reset stops the group, resets every item, and returns to Inactive.
func (g *Group) Reset() {
	g.Stop()
	for _, it := range g.items {
		it.Reset()
	}
	g.current = -1
	g.setState(GroupInactive)
}

// Update forwards the tick to in-flight items for timeout checking. Only
// active while Running.
func (g *Group) Update(now time.Time) {
	if g.state != GroupRunning {
		return
	}
	for _, it := range g.inFlight() {
		it.Update(now)
	}
}

// inFlight snapshots the items currently in Waiting or Active.
func (g *Group) inFlight() []*Item {
	var out []*Item
	for _, it := range g.items {
		if s := it.State(); s == ItemWaiting || s == ItemActive {
			out = append(out, it)
		}
	}
	return out
}

// itemFinished reacts to an item reaching a terminal state: advance the
// sequence past the current item, or re-check completion when a non-current
// item finished (parallel policies).
func (g *Group) itemFinished(it *Item) {
	if it.State() == ItemFailed {
		g.itemFailed.emit(ItemFailure{Group: g, Item: it})
	}
	if g.state != GroupRunning {
		return
	}
	idx := -1
	for i, existing := range g.items {
		if existing == it {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	if idx == g.current {
		g.advanceFrom(idx)
	} else {
		g.finishIfIdle()
	}
}

// advanceFrom drives the selection strategy starting at cursor. A failure
// to enter a candidate is logged and skipped; when no candidate can be
// entered and nothing is in flight, the group completes rather than
// deadlocking.
func (g *Group) advanceFrom(cursor int) {
	for {
		if g.state != GroupRunning {
			return
		}
		idxs := g.strategy.Select(g.items, cursor)
		if len(idxs) == 0 {
			g.finishIfIdle()
			return
		}
		entered := false
		max := cursor
		for _, i := range idxs {
			if i > max {
				max = i
			}
			it := g.items[i]
			if s := it.State(); s != ItemInactive && s != ItemWaiting {
				g.env.Log.Warn("skipping item: not eligible", "group", g.cfg.ID,
					"item", it.ID(), "state", s.String())
				continue
			}
			g.current = i
			g.currentChanged.emit(CurrentItemChange{Group: g, Item: it, Index: i})
			if err := g.enterItem(it); err != nil {
				g.env.Log.Warn("skipping item: enter failed", "group", g.cfg.ID,
					"item", it.ID(), "err", err)
				continue
			}
			entered = true
			// Entering may have completed the item synchronously, in
			// which case its terminal handler already advanced further.
			if g.state != GroupRunning {
				return
			}
		}
		if entered {
			return
		}
		cursor = max
	}
}

// enterItem shields the controller from collaborator panics while starting
// a candidate, so one broken step cannot abort the whole group.
func (g *Group) enterItem(it *Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("enter item %q: %v", it.ID(), r)
		}
	}()
	it.Enter()
	return nil
}

// finishIfIdle completes the group when nothing is left to drive.
func (g *Group) finishIfIdle() {
	if g.state != GroupRunning || len(g.inFlight()) > 0 {
		return
	}
	g.current = -1
	g.setState(GroupCompleted)
	g.finished.emit(g)
}
