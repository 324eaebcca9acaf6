// Package debugger implements the interactive REPL for stepping through
// tours: firing trigger flags, setting variables, and advancing the clock
// by hand.
package debugger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tourwright/tourwright/pkg/condition"
	"github.com/tourwright/tourwright/pkg/guide"
	"github.com/tourwright/tourwright/pkg/tour"
)

// Debugger drives a tour runtime interactively. Time only moves via the
// tick command, so conditions and timeouts are fully deterministic.
type Debugger struct {
	doc     *tour.Tour
	rt      *tour.Runtime
	clock   *condition.ManualClock
	output  io.Writer
	rl      *readline.Instance
	tickLen time.Duration
}

// New builds a debugger for a validated tour document.
func New(doc *tour.Tour, cfg tour.BuildConfig) (*Debugger, error) {
	clock := condition.NewManualClock(time.Unix(0, 0))
	cfg.Clock = clock

	rt, err := tour.Build(doc, cfg)
	if err != nil {
		return nil, fmt.Errorf("build tour: %w", err)
	}

	tickLen := 100 * time.Millisecond
	if doc.Meta.TickInterval != "" {
		if d, err := time.ParseDuration(doc.Meta.TickInterval); err == nil {
			tickLen = d
		}
	}

	return &Debugger{
		doc:     doc,
		rt:      rt,
		clock:   clock,
		output:  os.Stdout,
		tickLen: tickLen,
	}, nil
}

// Runtime returns the underlying tour runtime for external configuration.
func (d *Debugger) Runtime() *tour.Runtime { return d.rt }

// Run starts the interactive REPL loop.
func (d *Debugger) Run() error {
	commands := []string{"start", "next", "fire", "set", "tick", "state",
		"conditions", "vars", "pause", "resume", "stop", "help", "quit"}

	var completer = readline.NewPrefixCompleter()
	for _, cmd := range commands {
		completer.Children = append(completer.Children, readline.PcItem(cmd))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          d.buildPrompt(),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	d.rl = rl
	defer rl.Close()

	fmt.Fprintf(d.output, "tourwright play — %s (%d groups)\n", d.doc.Meta.Name, len(d.doc.Groups))
	fmt.Fprintf(d.output, "Type 'start' to begin, 'help' for available commands.\n\n")

	for {
		rl.SetPrompt(d.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "start":
			d.handleStart(parts)
		case "next", "n":
			d.handleNext()
		case "fire", "f":
			d.handleFire(parts)
		case "set":
			d.handleSet(parts)
		case "tick", "t":
			d.handleTick(parts)
		case "state", "s":
			d.handleState()
		case "conditions", "c":
			d.handleConditions()
		case "vars", "v":
			d.handleVars()
		case "pause":
			d.forEachGroup(func(g *guide.Group) { g.Pause() })
		case "resume":
			d.forEachGroup(func(g *guide.Group) { g.Resume() })
		case "stop":
			d.forEachGroup(func(g *guide.Group) { g.Stop() })
		case "help", "?":
			d.handleHelp()
		case "quit", "q":
			fmt.Fprintf(d.output, "Exiting.\n")
			return nil
		default:
			fmt.Fprintf(d.output, "Unknown command: %q. Type 'help' for available commands.\n", cmd)
		}
	}
}

// buildPrompt shows the active group's current step: tour[group/step ST]>
func (d *Debugger) buildPrompt() string {
	if d.rt.Manager.Done() {
		return "tour[done]> "
	}
	for _, g := range d.rt.Manager.Groups() {
		if g.State() != guide.GroupRunning && g.State() != guide.GroupPaused {
			continue
		}
		cur := g.CurrentItem()
		if cur == nil {
			return fmt.Sprintf("tour[%s]> ", g.ID())
		}
		return fmt.Sprintf("tour[%s/%s %s]> ", g.ID(), cur.ID(), cur.State())
	}
	return "tour> "
}

func (d *Debugger) forEachGroup(fn func(*guide.Group)) {
	for _, g := range d.rt.Manager.Groups() {
		fn(g)
	}
	d.settle()
}

// settle runs one registry tick at the current instant so flag fires and
// variable writes propagate through polled conditions.
func (d *Debugger) settle() {
	d.rt.Env.Conditions.Tick(d.clock.Now())
	d.rt.Manager.Update(d.clock.Now())
}
