package guide

import (
	"testing"
	"time"

	"github.com/tourwright/tourwright/pkg/condition"
)

// autoItem builds an item that starts on enter and completes as soon as its
// effect plays, so a sequence of them runs to completion synchronously.
func autoItem(env *Env, id string) *Item {
	return NewItem(env, ItemConfig{
		ID: id, AutoStart: true, AutoComplete: true,
		Effect: &scriptEffect{completeOnPlay: true},
	})
}

// TestSequentialRunToCompletion drives three instantly-completing steps and
// verifies the advancement contract: one CurrentItemChanged per step in
// order, and exactly one group completion even though every enter
// re-advances reentrantly.
func TestSequentialRunToCompletion(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	g.AddItem(autoItem(env, "one"))
	g.AddItem(autoItem(env, "two"))
	g.AddItem(autoItem(env, "three"))

	var visited []string
	g.OnCurrentItemChanged(func(ch CurrentItemChange) { visited = append(visited, ch.Item.ID()) })
	completions := 0
	g.OnCompleted(func(*Group) { completions++ })

	g.Init()
	g.Start()

	if g.State() != GroupCompleted {
		t.Fatalf("state = %v, want Completed", g.State())
	}
	if len(visited) != 3 || visited[0] != "one" || visited[1] != "two" || visited[2] != "three" {
		t.Fatalf("visited = %v, want [one two three]", visited)
	}
	if completions != 1 {
		t.Fatalf("completion events = %d, want 1", completions)
	}
	if g.CurrentIndex() != -1 {
		t.Fatalf("CurrentIndex() = %d after completion, want -1", g.CurrentIndex())
	}
}

// TestSequentialWaitsOnTriggers verifies one-step-at-a-time advancement
// gated by trigger and completion flags.
func TestSequentialWaitsOnTriggers(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	click1, done1 := condition.NewFlag("click1"), condition.NewFlag("done1")
	click2 := condition.NewFlag("click2")

	g := NewGroup(env, GroupConfig{ID: "g"})
	one := NewItem(env, ItemConfig{ID: "one", AutoStart: true, AutoComplete: true, Trigger: click1, Completion: done1})
	two := NewItem(env, ItemConfig{ID: "two", AutoStart: true, Trigger: click2})
	g.AddItem(one)
	g.AddItem(two)

	g.Init()
	g.Start()

	if one.State() != ItemWaiting || two.State() != ItemInactive {
		t.Fatalf("after start: one=%v two=%v, want Waiting/Inactive", one.State(), two.State())
	}

	click1.Fire()
	if one.State() != ItemActive {
		t.Fatalf("one = %v after trigger, want Active", one.State())
	}
	if two.State() != ItemInactive {
		t.Fatal("two must not enter while one is active")
	}

	done1.Fire()
	if one.State() != ItemCompleted {
		t.Fatalf("one = %v after completion flag, want Completed", one.State())
	}
	if two.State() != ItemWaiting || g.CurrentItem() != two {
		t.Fatalf("two = %v current=%v, want Waiting and current", two.State(), g.CurrentItem())
	}
}

// TestStartSkipsCompletedItems verifies the sequential scan passes over a
// step that already completed before the group started.
func TestStartSkipsCompletedItems(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	a := NewItem(env, ItemConfig{ID: "a", AutoStart: true})
	b := NewItem(env, ItemConfig{ID: "b", AutoStart: true})
	c := NewItem(env, ItemConfig{ID: "c", AutoStart: true, Trigger: condition.NewFlag("go-c")})
	g.AddItem(a)
	g.AddItem(b)
	g.AddItem(c)

	// Complete a out of band, before the group ever runs.
	a.Enter()
	a.Complete()
	if a.State() != ItemCompleted {
		t.Fatalf("a = %v after out-of-band completion, want Completed", a.State())
	}

	g.Init()
	g.Start()

	if g.CurrentItem() != b || b.State() != ItemActive {
		t.Fatalf("current = %v, b = %v; want b Active as the first selection", g.CurrentItem(), b.State())
	}
	if c.State() != ItemInactive {
		t.Fatalf("c = %v, want Inactive until b finishes", c.State())
	}
}

// TestStopBlocksAdvancement verifies Stop sets the terminal group state
// before cancelling items, so cancellations cannot re-advance the sequence.
func TestStopBlocksAdvancement(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	one := NewItem(env, ItemConfig{ID: "one", AutoStart: true})
	two := NewItem(env, ItemConfig{ID: "two", AutoStart: true})
	g.AddItem(one)
	g.AddItem(two)

	g.Init()
	g.Start()
	if one.State() != ItemActive {
		t.Fatalf("one = %v, want Active", one.State())
	}

	advanced := false
	g.OnCurrentItemChanged(func(CurrentItemChange) { advanced = true })

	g.Stop()
	if g.State() != GroupCancelled {
		t.Fatalf("state = %v, want Cancelled", g.State())
	}
	if one.State() != ItemCancelled {
		t.Fatalf("one = %v, want Cancelled", one.State())
	}
	if two.State() != ItemInactive {
		t.Fatalf("two = %v, want Inactive: stop must not advance", two.State())
	}
	if advanced {
		t.Fatal("cancellation advanced the sequence")
	}
	if g.CurrentIndex() != -1 {
		t.Fatalf("CurrentIndex() = %d, want -1", g.CurrentIndex())
	}
}

// TestItemFailureAdvancesPast verifies a failed step emits ItemFailed and
// the sequence moves on rather than halting.
func TestItemFailureAdvancesPast(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	env := newTestEnv(clock)
	g := NewGroup(env, GroupConfig{ID: "g"})
	one := NewItem(env, ItemConfig{
		ID: "one", AutoStart: true,
		Trigger:        condition.NewFlag("never"),
		WaitingTimeout: time.Second,
	})
	two := NewItem(env, ItemConfig{ID: "two", AutoStart: true})
	g.AddItem(one)
	g.AddItem(two)

	var failures []string
	g.OnItemFailed(func(f ItemFailure) { failures = append(failures, f.Item.ID()) })

	g.Init()
	g.Start()
	g.Update(clock.Advance(time.Second))

	if one.State() != ItemFailed {
		t.Fatalf("one = %v, want Failed", one.State())
	}
	if len(failures) != 1 || failures[0] != "one" {
		t.Fatalf("failures = %v, want [one]", failures)
	}
	if two.State() != ItemActive || g.CurrentItem() != two {
		t.Fatalf("two = %v, want Active and current after failure", two.State())
	}
}

// TestGroupCompletesDespiteFailures verifies the anti-deadlock rule: when
// the last step fails and nothing is in flight, the group completes.
func TestGroupCompletesDespiteFailures(t *testing.T) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	env := newTestEnv(clock)
	g := NewGroup(env, GroupConfig{ID: "g"})
	g.AddItem(NewItem(env, ItemConfig{
		ID: "only", AutoStart: true,
		Trigger:        condition.NewFlag("never"),
		WaitingTimeout: time.Second,
	}))

	g.Init()
	g.Start()
	g.Update(clock.Advance(time.Second))

	if g.State() != GroupCompleted {
		t.Fatalf("state = %v, want Completed after the only step failed", g.State())
	}
}

// TestPauseResumeForwardsToEffects verifies the pause capability gates and
// the effect forwarding.
func TestPauseResumeForwardsToEffects(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	effect := &scriptEffect{}
	g := NewGroup(env, GroupConfig{ID: "g", CanPause: true, CanResume: true})
	g.AddItem(NewItem(env, ItemConfig{ID: "one", AutoStart: true, Effect: effect}))

	g.Init()
	g.Start()

	g.Pause()
	if g.State() != GroupPaused || effect.pauses != 1 {
		t.Fatalf("after pause: state=%v pauses=%d, want Paused/1", g.State(), effect.pauses)
	}
	g.Resume()
	if g.State() != GroupRunning || effect.resumes != 1 {
		t.Fatalf("after resume: state=%v resumes=%d, want Running/1", g.State(), effect.resumes)
	}
}

// TestPauseRequiresCapability verifies groups without CanPause ignore Pause.
func TestPauseRequiresCapability(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	g.AddItem(NewItem(env, ItemConfig{ID: "one", AutoStart: true}))

	g.Init()
	g.Start()
	g.Pause()
	if g.State() != GroupRunning {
		t.Fatalf("state = %v, want Running: pause must be gated on CanPause", g.State())
	}
}

// TestStartGuards verifies Start refuses an empty group and a group that
// was never initialized.
func TestStartGuards(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))

	empty := NewGroup(env, GroupConfig{ID: "empty"})
	empty.Init()
	empty.Start()
	if empty.State() != GroupWaiting {
		t.Fatalf("empty group state = %v, want Waiting", empty.State())
	}

	uninit := NewGroup(env, GroupConfig{ID: "uninit"})
	uninit.AddItem(NewItem(env, ItemConfig{ID: "one"}))
	uninit.Start()
	if uninit.State() != GroupInactive {
		t.Fatalf("uninitialized group state = %v, want Inactive", uninit.State())
	}
}

// TestResetRoundTrip verifies a completed group can be reset and run again.
func TestResetRoundTrip(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	g.AddItem(autoItem(env, "one"))
	g.AddItem(autoItem(env, "two"))

	g.Init()
	g.Start()
	if g.State() != GroupCompleted {
		t.Fatalf("first run state = %v, want Completed", g.State())
	}

	g.Reset()
	if g.State() != GroupInactive {
		t.Fatalf("state = %v after Reset, want Inactive", g.State())
	}
	for _, it := range g.Items() {
		if it.State() != ItemInactive {
			t.Fatalf("item %s = %v after Reset, want Inactive", it.ID(), it.State())
		}
	}

	g.Init()
	g.Start()
	if g.State() != GroupCompleted {
		t.Fatalf("second run state = %v, want Completed", g.State())
	}
}

// TestRemoveCurrentItem verifies removing the in-flight item cancels it and
// lets the sequence continue.
func TestRemoveCurrentItem(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	g := NewGroup(env, GroupConfig{ID: "g"})
	one := NewItem(env, ItemConfig{ID: "one", AutoStart: true})
	two := NewItem(env, ItemConfig{ID: "two", AutoStart: true})
	g.AddItem(one)
	g.AddItem(two)

	g.Init()
	g.Start()
	g.RemoveItem("one")

	if len(g.Items()) != 1 {
		t.Fatalf("len(Items()) = %d, want 1", len(g.Items()))
	}
	if one.State() != ItemCancelled {
		t.Fatalf("one = %v, want Cancelled", one.State())
	}
	if two.State() != ItemActive || g.CurrentItem() != two {
		t.Fatalf("two = %v, want Active and current", two.State())
	}
}

// TestSelectionStrategies covers the three policies over a mixed item set.
func TestSelectionStrategies(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	items := []*Item{
		NewItem(env, ItemConfig{ID: "a", Priority: 1}),
		NewItem(env, ItemConfig{ID: "b", Priority: 5}),
		NewItem(env, ItemConfig{ID: "c", Priority: 3}),
	}

	if got := (Sequential{}).Select(items, -1); len(got) != 1 || got[0] != 0 {
		t.Errorf("Sequential from -1 = %v, want [0]", got)
	}
	if got := (Sequential{}).Select(items, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("Sequential from 1 = %v, want [2]", got)
	}
	if got := (Sequential{}).Select(items, 2); got != nil {
		t.Errorf("Sequential past end = %v, want nil", got)
	}

	if got := (PriorityOrder{}).Select(items, -1); len(got) != 1 || got[0] != 1 {
		t.Errorf("PriorityOrder = %v, want [1] (highest priority)", got)
	}

	if got := (Parallel{}).Select(items, -1); len(got) != 3 {
		t.Errorf("Parallel = %v, want all three", got)
	}
}

// TestParallelGroupCompletes verifies a parallel group enters every item at
// once and completes when the last one finishes.
func TestParallelGroupCompletes(t *testing.T) {
	env := newTestEnv(condition.NewManualClock(time.Unix(0, 0)))
	done1, done2 := condition.NewFlag("done1"), condition.NewFlag("done2")

	g := NewGroup(env, GroupConfig{ID: "g", Strategy: Parallel{}})
	g.AddItem(NewItem(env, ItemConfig{ID: "one", AutoStart: true, AutoComplete: true, Completion: done1}))
	g.AddItem(NewItem(env, ItemConfig{ID: "two", AutoStart: true, AutoComplete: true, Completion: done2}))

	g.Init()
	g.Start()

	for _, it := range g.Items() {
		if it.State() != ItemActive {
			t.Fatalf("item %s = %v, want Active under parallel start", it.ID(), it.State())
		}
	}

	done2.Fire()
	if g.State() != GroupRunning {
		t.Fatalf("state = %v with one item left, want Running", g.State())
	}
	done1.Fire()
	if g.State() != GroupCompleted {
		t.Fatalf("state = %v after all items, want Completed", g.State())
	}
}
