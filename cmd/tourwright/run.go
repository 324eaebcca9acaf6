package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tourwright/tourwright/pkg/condition"
	"github.com/tourwright/tourwright/pkg/guide"
	"github.com/tourwright/tourwright/pkg/render"
	"github.com/tourwright/tourwright/pkg/tour"
)

var (
	runFires    []string
	runTimeout  string
	runProgress string
)

var runCmd = &cobra.Command{
	Use:   "run [tour.yaml]",
	Short: "Run a tour headlessly on a simulated clock",
	Long: `Run a tour to completion without a terminal UI. Time is simulated:
the clock advances in registry-tick steps, scripted effects play out their
durations, and flag conditions fire at the offsets given with --fire.

Examples:
  tourwright run tour.yaml
  tourwright run tour.yaml --fire welcome.clicked:2s --fire form.submitted:5s
  tourwright run tour.yaml --timeout 2m --save-progress progress.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringArrayVar(&runFires, "fire", nil, "Fire a flag at an offset (id or id:offset), repeatable")
	runCmd.Flags().StringVar(&runTimeout, "timeout", "1m", "Simulated time budget before giving up")
	runCmd.Flags().StringVar(&runProgress, "save-progress", "", "Write final progress records to this JSON file")
}

// scheduledFire is one --fire entry: set the flag once the simulated clock
// passes the offset.
type scheduledFire struct {
	id     string
	offset time.Duration
	done   bool
}

func parseFires(specs []string) ([]*scheduledFire, error) {
	fires := make([]*scheduledFire, 0, len(specs))
	for _, s := range specs {
		id, off, found := strings.Cut(s, ":")
		f := &scheduledFire{id: id}
		if found {
			d, err := time.ParseDuration(off)
			if err != nil {
				return nil, fmt.Errorf("invalid --fire %q: %w", s, err)
			}
			f.offset = d
		}
		fires = append(fires, f)
	}
	return fires, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	t, errs := tour.ValidateFile(args[0])
	printValidationWarnings(errs)
	if hasValidationErrors(errs) {
		printValidationFailures(errs)
		return fmt.Errorf("tour validation failed")
	}

	budget, err := time.ParseDuration(runTimeout)
	if err != nil {
		return fmt.Errorf("invalid --timeout %q: %w", runTimeout, err)
	}
	fires, err := parseFires(runFires)
	if err != nil {
		return err
	}

	clock := condition.NewManualClock(time.Unix(0, 0))
	var scripted []*render.Scripted
	effects := func(spec *tour.EffectSpec) (guide.Effect, error) {
		if spec.Duration != "" {
			d, err := time.ParseDuration(spec.Duration)
			if err != nil {
				return nil, fmt.Errorf("duration: %w", err)
			}
			s := render.NewScripted(d)
			scripted = append(scripted, s)
			return s, nil
		}
		if spec.Kind == "panel" {
			return render.NewPanel(os.Stdout, spec.Title, spec.Body, 0), nil
		}
		return &guide.NopEffect{}, nil
	}

	rt, err := tour.Build(t, tour.BuildConfig{
		Clock:   clock,
		Logger:  slog.Default(),
		Effects: effects,
	})
	if err != nil {
		return fmt.Errorf("build tour: %w", err)
	}
	for _, fire := range fires {
		if _, ok := rt.Flags[fire.id]; !ok {
			return fmt.Errorf("--fire %s: no such flag condition", fire.id)
		}
	}

	interval := 100 * time.Millisecond
	if t.Meta.TickInterval != "" {
		if d, err := time.ParseDuration(t.Meta.TickInterval); err == nil {
			interval = d
		}
	}

	start := clock.Now()
	for _, g := range rt.Manager.Groups() {
		rt.Manager.StartGroup(g.ID())
	}

	for !rt.Manager.Done() {
		elapsed := clock.Now().Sub(start)
		if elapsed >= budget {
			fmt.Fprintf(os.Stderr, "Timed out after %s of simulated time.\n", budget)
			rt.Manager.StopAll()
			break
		}
		now := clock.Advance(interval)
		for _, fire := range fires {
			if !fire.done && now.Sub(start) >= fire.offset {
				rt.Flags[fire.id].Fire()
				fire.done = true
			}
		}
		for _, s := range scripted {
			s.Tick(now)
		}
		rt.Env.Conditions.Tick(now)
		rt.Manager.Update(now)
	}

	if runProgress != "" {
		if err := guide.SaveProgress(rt.Manager.SnapshotProgress(), runProgress); err != nil {
			fmt.Fprintf(os.Stderr, "warning: save progress: %v\n", err)
		} else {
			fmt.Printf("  Progress: %s\n", runProgress)
		}
	}

	printRunSummary(os.Stdout, rt)
	for _, g := range rt.Manager.Groups() {
		if g.State() == guide.GroupFailed || g.State() == guide.GroupCancelled {
			os.Exit(1)
		}
	}
	return nil
}

func printRunSummary(w io.Writer, rt *tour.Runtime) {
	fmt.Fprintln(w)
	for _, g := range rt.Manager.Groups() {
		fmt.Fprintf(w, "%s: %s\n", g.ID(), g.State())
		for _, it := range g.Items() {
			mark := "·"
			switch it.State() {
			case guide.ItemCompleted:
				mark = "✓"
			case guide.ItemFailed:
				mark = "✗"
			case guide.ItemCancelled:
				mark = "−"
			}
			fmt.Fprintf(w, "  %s %-24s %-10s %s\n", mark, it.ID(), it.State(), it.Duration())
		}
	}
}

// panelEffects maps authored effect specs onto terminal panels for
// interactive sessions.
func panelEffects(out io.Writer) tour.EffectFactory {
	return func(spec *tour.EffectSpec) (guide.Effect, error) {
		switch spec.Kind {
		case "panel":
			return render.NewPanel(out, spec.Title, spec.Body, 0), nil
		default:
			return &guide.NopEffect{}, nil
		}
	}
}
