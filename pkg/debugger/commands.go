package debugger

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/tourwright/tourwright/pkg/guide"
)

// handleStart starts the named group, or every registered group.
func (d *Debugger) handleStart(parts []string) {
	if len(parts) > 1 {
		g := d.rt.Manager.Group(parts[1])
		if g == nil {
			fmt.Fprintf(d.output, "Unknown group: %q\n", parts[1])
			return
		}
		d.rt.Manager.StartGroup(parts[1])
	} else {
		for _, g := range d.rt.Manager.Groups() {
			d.rt.Manager.StartGroup(g.ID())
		}
	}
	d.settle()
	d.handleState()
}

// handleNext force-advances the current step: a waiting step is started,
// an active step is completed. Conditions are bypassed, which is the point
// of a debugger.
func (d *Debugger) handleNext() {
	cur := d.currentItem()
	if cur == nil {
		fmt.Fprintf(d.output, "No step in flight. Use 'start' first.\n")
		return
	}
	switch cur.State() {
	case guide.ItemWaiting:
		fmt.Fprintf(d.output, "Starting %s\n", cur.ID())
		cur.Start()
	case guide.ItemActive:
		fmt.Fprintf(d.output, "Completing %s\n", cur.ID())
		cur.Complete()
	default:
		fmt.Fprintf(d.output, "Step %s is %s; nothing to advance.\n", cur.ID(), cur.State())
	}
	d.settle()
}

// handleFire sets a flag condition and propagates the change.
func (d *Debugger) handleFire(parts []string) {
	if len(parts) < 2 {
		fmt.Fprintf(d.output, "Usage: fire <flag-id>\n")
		return
	}
	f, ok := d.rt.Flags[parts[1]]
	if !ok {
		fmt.Fprintf(d.output, "Unknown flag: %q. 'conditions' lists registered ids.\n", parts[1])
		return
	}
	f.Fire()
	d.settle()
	fmt.Fprintf(d.output, "  ✓ fired %s\n", parts[1])
}

// handleSet writes a variable into the shared environment. Values parse as
// bool or number when they look like one, else string.
func (d *Debugger) handleSet(parts []string) {
	if len(parts) < 3 {
		fmt.Fprintf(d.output, "Usage: set <name> <value>\n")
		return
	}
	name := parts[1]
	d.rt.Vars.Set(name, parseScalar(parts[2]))
	d.settle()
	fmt.Fprintf(d.output, "  %s = %v\n", parts[1], parseScalar(parts[2]))
}

func parseScalar(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// handleTick advances the clock by a duration (default one registry
// interval) and runs the engine update. "tick 5s" jumps five seconds.
func (d *Debugger) handleTick(parts []string) {
	step := d.tickLen
	if len(parts) > 1 {
		dur, err := time.ParseDuration(parts[1])
		if err != nil {
			fmt.Fprintf(d.output, "Invalid duration %q: %v\n", parts[1], err)
			return
		}
		step = dur
	}
	// Cross the interval in registry-sized steps so intermediate timeouts
	// fire in order rather than all at the jump target.
	remaining := step
	for remaining > 0 {
		inc := d.tickLen
		if inc > remaining {
			inc = remaining
		}
		now := d.clock.Advance(inc)
		d.rt.Env.Conditions.Tick(now)
		d.rt.Manager.Update(now)
		remaining -= inc
	}
	fmt.Fprintf(d.output, "  clock +%s\n", step)
}

// handleState prints every group and step with the current step marked.
func (d *Debugger) handleState() {
	for _, g := range d.rt.Manager.Groups() {
		fmt.Fprintf(d.output, "%s [%s] %s\n", g.ID(), g.Strategy(), g.State())
		for i, it := range g.Items() {
			marker := "  "
			if i == g.CurrentIndex() {
				marker = "▶ "
			}
			fmt.Fprintf(d.output, "  %s%-24s %s\n", marker, it.ID(), it.State())
		}
	}
}

// handleConditions prints registered conditions split by satisfaction.
func (d *Debugger) handleConditions() {
	reg := d.rt.Env.Conditions
	sat := reg.Satisfied()
	unsat := reg.Unsatisfied()
	fmt.Fprintf(d.output, "Conditions (%d registered):\n", reg.Len())
	for _, c := range sat {
		fmt.Fprintf(d.output, "  ✓ %s\n", c.ID())
	}
	for _, c := range unsat {
		fmt.Fprintf(d.output, "  · %s\n", c.ID())
	}
}

// handleVars prints the variable environment sorted by name.
func (d *Debugger) handleVars() {
	env := d.rt.Vars.Env()
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintf(d.output, "  (no variables)\n")
		return
	}
	for _, k := range names {
		fmt.Fprintf(d.output, "  %-20s %v\n", k, env[k])
	}
}

// currentItem returns the in-flight step of the first running group.
func (d *Debugger) currentItem() *guide.Item {
	for _, g := range d.rt.Manager.Groups() {
		if g.State() != guide.GroupRunning {
			continue
		}
		if cur := g.CurrentItem(); cur != nil && !cur.State().Terminal() {
			return cur
		}
	}
	return nil
}

// handleHelp displays available commands.
func (d *Debugger) handleHelp() {
	fmt.Fprintln(d.output, "Available commands:")
	fmt.Fprintln(d.output, "  start [group]    Start a group (default: all)")
	fmt.Fprintln(d.output, "  next (n)         Force-advance the current step")
	fmt.Fprintln(d.output, "  fire (f)         Fire a flag condition: fire <flag-id>")
	fmt.Fprintln(d.output, "  set              Set a variable: set <name> <value>")
	fmt.Fprintln(d.output, "  tick (t)         Advance the clock: tick [duration]")
	fmt.Fprintln(d.output, "  state (s)        Show group and step states")
	fmt.Fprintln(d.output, "  conditions (c)   Show registered conditions")
	fmt.Fprintln(d.output, "  vars (v)         Show the variable environment")
	fmt.Fprintln(d.output, "  pause / resume   Pause or resume all groups")
	fmt.Fprintln(d.output, "  stop             Cancel all groups")
	fmt.Fprintln(d.output, "  help (?)         Show this help")
	fmt.Fprintln(d.output, "  quit (q)         Exit")
}
