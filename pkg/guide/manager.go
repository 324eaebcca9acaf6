package guide

import (
	"time"
)

// Manager is the external-facing coordinator: it registers groups, drives
// their per-tick update (and the condition registry's cadence), and
// re-exposes group events on one surface. It holds no orchestration logic
// of its own.
type Manager struct {
	env    *Env
	groups map[string]*Group
	order  []string
	subs   map[string][]func()

	groupStarted   signal[*Group]
	groupCompleted signal[*Group]
	groupPaused    signal[*Group]
	groupResumed   signal[*Group]
	groupCancelled signal[*Group]
	groupFailed    signal[*Group]
	currentChanged signal[CurrentItemChange]
	itemFailed     signal[ItemFailure]
}

// NewManager creates a manager bound to env.
func NewManager(env *Env) *Manager {
	if env == nil {
		env = NewEnv(EnvConfig{})
	}
	return &Manager{
		env:    env,
		groups: make(map[string]*Group),
		subs:   make(map[string][]func()),
	}
}

// Env returns the shared engine context.
func (m *Manager) Env() *Env { return m.env }

// OnGroupStarted registers a forwarded-event observer.
func (m *Manager) OnGroupStarted(fn func(*Group)) func() { return m.groupStarted.add(fn) }

// OnGroupCompleted registers a forwarded-event observer.
func (m *Manager) OnGroupCompleted(fn func(*Group)) func() { return m.groupCompleted.add(fn) }

// OnGroupPaused registers a forwarded-event observer.
func (m *Manager) OnGroupPaused(fn func(*Group)) func() { return m.groupPaused.add(fn) }

// OnGroupResumed registers a forwarded-event observer.
func (m *Manager) OnGroupResumed(fn func(*Group)) func() { return m.groupResumed.add(fn) }

// OnGroupCancelled registers a forwarded-event observer.
func (m *Manager) OnGroupCancelled(fn func(*Group)) func() { return m.groupCancelled.add(fn) }

// OnGroupFailed registers a forwarded-event observer.
func (m *Manager) OnGroupFailed(fn func(*Group)) func() { return m.groupFailed.add(fn) }

// OnCurrentItemChanged registers a forwarded-event observer.
func (m *Manager) OnCurrentItemChanged(fn func(CurrentItemChange)) func() {
	return m.currentChanged.add(fn)
}

// OnItemFailed registers a forwarded-event observer.
func (m *Manager) OnItemFailed(fn func(ItemFailure)) func() { return m.itemFailed.add(fn) }

// RegisterGroup records the group, initializes it to Waiting, and wires its
// events onto the manager surface. Duplicate ids are a logged no-op.
func (m *Manager) RegisterGroup(g *Group) {
	if g == nil {
		m.env.Log.Warn("register group ignored: nil group")
		return
	}
	if _, exists := m.groups[g.ID()]; exists {
		m.env.Log.Warn("register group ignored: duplicate id", "group", g.ID())
		return
	}
	m.groups[g.ID()] = g
	m.order = append(m.order, g.ID())
	m.subs[g.ID()] = []func(){
		g.OnStarted(m.groupStarted.emit),
		g.OnCompleted(m.groupCompleted.emit),
		g.OnPaused(m.groupPaused.emit),
		g.OnResumed(m.groupResumed.emit),
		g.OnCancelled(m.groupCancelled.emit),
		g.OnFailed(m.groupFailed.emit),
		g.OnCurrentItemChanged(m.currentChanged.emit),
		g.OnItemFailed(m.itemFailed.emit),
	}
	if g.State() == GroupInactive {
		g.Init()
	}
	m.env.Log.Debug("group registered", "group", g.ID(), "items", len(g.Items()))
}

// UnregisterGroup disposes a group: resets it (stopping and releasing its
// conditions) and removes it from the manager.
func (m *Manager) UnregisterGroup(id string) {
	g, exists := m.groups[id]
	if !exists {
		return
	}
	g.Reset()
	for _, unsub := range m.subs[id] {
		unsub()
	}
	delete(m.subs, id)
	delete(m.groups, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.env.Log.Debug("group unregistered", "group", id)
}

// Group returns the registered group or nil.
func (m *Manager) Group(id string) *Group { return m.groups[id] }

// Groups returns registered groups in registration order.
func (m *Manager) Groups() []*Group {
	out := make([]*Group, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.groups[id])
	}
	return out
}

// StartGroup starts the named group. Unknown ids are a logged no-op.
func (m *Manager) StartGroup(id string) {
	g, exists := m.groups[id]
	if !exists {
		m.env.Log.Warn("start group ignored: not registered", "group", id)
		return
	}
	g.Start()
}

// StopGroup cancels the named group.
func (m *Manager) StopGroup(id string) {
	g, exists := m.groups[id]
	if !exists {
		m.env.Log.Warn("stop group ignored: not registered", "group", id)
		return
	}
	g.Stop()
}

// PauseAll pauses every pausable running group.
func (m *Manager) PauseAll() {
	for _, g := range m.Groups() {
		if g.CanPause() && g.State() == GroupRunning {
			g.Pause()
		}
	}
}

// ResumeAll resumes every resumable paused group.
func (m *Manager) ResumeAll() {
	for _, g := range m.Groups() {
		if g.CanResume() && g.State() == GroupPaused {
			g.Resume()
		}
	}
}

// StopAll cancels every group.
func (m *Manager) StopAll() {
	for _, g := range m.Groups() {
		g.Stop()
	}
}

// FailAll fails every group.
func (m *Manager) FailAll() {
	for _, g := range m.Groups() {
		g.Fail()
	}
}

// Update is the host's per-frame entry point: it gives the condition
// registry a chance to run its cadenced tick, then forwards the tick to
// every group for timeout checking.
func (m *Manager) Update(now time.Time) {
	m.env.Conditions.MaybeTick(now)
	for _, g := range m.Groups() {
		g.Update(now)
	}
}

// Done reports whether every registered group reached a terminal state.
func (m *Manager) Done() bool {
	for _, g := range m.Groups() {
		if !g.State().Terminal() {
			return false
		}
	}
	return len(m.groups) > 0
}
