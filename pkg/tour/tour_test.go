package tour

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tourwright/tourwright/pkg/condition"
	"github.com/tourwright/tourwright/pkg/guide"
)

const minimalTour = `
apiVersion: tour/v1
meta:
  name: Minimal
groups:
  - id: g
    items:
      - id: step
`

// TestLoadRejectsUnknownFields verifies the strict decode: an author typo
// must fail parsing, not silently vanish.
func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := `
apiVersion: tour/v1
meta:
  name: Typo tour
groups:
  - id: g
    items:
      - id: step
        auto_strat: true
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("unknown field auto_strat was accepted")
	}
}

// TestLoadParsesDocument verifies field mapping on a well-formed tour.
func TestLoadParsesDocument(t *testing.T) {
	doc, err := LoadFile("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if doc.APIVersion != "tour/v1" || doc.Meta.Name != "Settings walkthrough" {
		t.Fatalf("header mismatch: %q %q", doc.APIVersion, doc.Meta.Name)
	}
	if len(doc.Groups) != 1 || len(doc.Groups[0].Items) != 3 {
		t.Fatalf("got %d groups, want 1 with 3 items", len(doc.Groups))
	}
	trigger := doc.Groups[0].Items[1].Trigger
	if trigger == nil || trigger.Kind != "all" || len(trigger.Children) != 2 {
		t.Fatalf("pick-theme trigger = %+v, want all with 2 children", trigger)
	}
}

// TestValidateFileAcceptsValid runs the full pipeline on the known-good
// fixture.
func TestValidateFileAcceptsValid(t *testing.T) {
	_, errs := ValidateFile("testdata/valid.yaml")
	for _, e := range errs {
		if e.Severity == "error" {
			t.Errorf("unexpected error: %v", e)
		}
	}
}

// TestValidateFileRejectsInvalid verifies the domain phase catches the
// fixture's planted defects.
func TestValidateFileRejectsInvalid(t *testing.T) {
	_, errs := ValidateFile("testdata/invalid.yaml")

	wantFragments := []string{
		"not condition requires exactly one child",
		"duplicate condition id",
		"duplicate item id",
		"invalid duration \"soon\"",
		"compile condition",
	}
	for _, want := range wantFragments {
		found := false
		for _, e := range errs {
			if strings.Contains(e.Message, want) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no validation error containing %q; got %v", want, errs)
		}
	}
}

// TestValidateDomainTable exercises individual domain rules on in-memory
// documents.
func TestValidateDomainTable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Tour)
		want   string
	}{
		{
			name:   "wrong api version",
			mutate: func(d *Tour) { d.APIVersion = "tour/v2" },
			want:   "unrecognized apiVersion",
		},
		{
			name:   "bad tick interval",
			mutate: func(d *Tour) { d.Meta.TickInterval = "fast" },
			want:   "invalid duration",
		},
		{
			name: "duplicate group id",
			mutate: func(d *Tour) {
				d.Groups = append(d.Groups, Group{ID: "g", Items: []Item{{ID: "x"}}})
			},
			want: "duplicate group id",
		},
		{
			name:   "unknown strategy",
			mutate: func(d *Tour) { d.Groups[0].Strategy = "roundrobin" },
			want:   "unknown strategy",
		},
		{
			name: "unknown condition kind",
			mutate: func(d *Tour) {
				d.Groups[0].Items[0].Trigger = &Condition{Kind: "timer"}
			},
			want: "unknown condition kind",
		},
		{
			name: "flag with children",
			mutate: func(d *Tour) {
				d.Groups[0].Items[0].Trigger = &Condition{
					Kind: "flag", ID: "f", Children: []*Condition{{Kind: "flag", ID: "c"}},
				}
			},
			want: "flag condition cannot have children",
		},
		{
			name: "empty composite",
			mutate: func(d *Tour) {
				d.Groups[0].Items[0].Trigger = &Condition{Kind: "any"}
			},
			want: "requires at least one child",
		},
		{
			name: "bad cleanup strategy",
			mutate: func(d *Tour) {
				d.Groups[0].Items[0].Trigger = &Condition{Kind: "flag", ID: "f", Cleanup: "whenever"}
			},
			want: "unknown cleanup strategy",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Load(strings.NewReader(minimalTour))
			if err != nil {
				t.Fatalf("load base doc: %v", err)
			}
			tc.mutate(doc)
			errs := ValidateDomain(doc)
			for _, e := range errs {
				if strings.Contains(e.Message, tc.want) {
					return
				}
			}
			t.Errorf("no domain error containing %q; got %v", tc.want, errs)
		})
	}
}

// TestValidateDomainWarnsResumeWithoutPause verifies the advisory severity
// path.
func TestValidateDomainWarnsResumeWithoutPause(t *testing.T) {
	doc, err := Load(strings.NewReader(minimalTour))
	if err != nil {
		t.Fatalf("load base doc: %v", err)
	}
	doc.Groups[0].CanResume = true
	for _, e := range ValidateDomain(doc) {
		if e.Severity == "warning" && strings.Contains(e.Message, "can_resume without can_pause") {
			return
		}
	}
	t.Fatal("expected a can_resume warning")
}

// TestBuildIndexesFlags verifies Build populates the flag index, including
// derived ids for unnamed conditions.
func TestBuildIndexesFlags(t *testing.T) {
	doc := `
apiVersion: tour/v1
meta:
  name: Flags
groups:
  - id: g
    items:
      - id: named
        trigger:
          kind: flag
          id: clicked
      - id: unnamed
        trigger:
          kind: flag
`
	parsed, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rt, err := Build(parsed, BuildConfig{
		Clock:  condition.NewManualClock(time.Unix(0, 0)),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if rt.Flags["clicked"] == nil {
		t.Fatal("named flag not indexed")
	}
	if rt.Flags["g.unnamed.trigger"] == nil {
		t.Fatalf("derived flag id missing; have %v", keys(rt.Flags))
	}
}

// TestBuildRejectsBadExpression verifies build-time condition errors carry
// the group/item context.
func TestBuildRejectsBadExpression(t *testing.T) {
	doc := `
apiVersion: tour/v1
meta:
  name: Bad
groups:
  - id: g
    items:
      - id: step
        trigger:
          kind: expr
          expr: "count >"
`
	parsed, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = Build(parsed, BuildConfig{
		Clock:  condition.NewManualClock(time.Unix(0, 0)),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err == nil {
		t.Fatal("Build accepted an uncompilable expression")
	}
	if !strings.Contains(err.Error(), `group "g" item "step"`) {
		t.Fatalf("error lacks context: %v", err)
	}
}

// TestBuiltTourRunsEndToEnd drives the valid fixture through a full run on
// a manual clock: flag triggers, a composite flag+expr gate, and explicit
// completion.
func TestBuiltTourRunsEndToEnd(t *testing.T) {
	parsed, err := LoadFile("testdata/valid.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	clock := condition.NewManualClock(time.Unix(0, 0))
	rt, err := Build(parsed, BuildConfig{
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	g := rt.Manager.Group("settings")
	if g == nil {
		t.Fatal("settings group not registered")
	}
	rt.Manager.StartGroup("settings")

	open := g.Item("open-panel")
	if open.State() != guide.ItemWaiting {
		t.Fatalf("open-panel = %v, want Waiting", open.State())
	}
	rt.Flags["settings-opened"].Fire()
	if open.State() != guide.ItemActive {
		t.Fatalf("open-panel = %v after flag, want Active", open.State())
	}
	open.Complete()

	pick := g.Item("pick-theme")
	if pick.State() != guide.ItemWaiting {
		t.Fatalf("pick-theme = %v, want Waiting", pick.State())
	}
	rt.Flags["theme-hovered"].Fire()
	if pick.State() != guide.ItemWaiting {
		t.Fatal("pick-theme started with the expression half of the gate unmet")
	}
	rt.Vars.Set("visits", 1)
	rt.Manager.Update(clock.Advance(50 * time.Millisecond))
	if pick.State() != guide.ItemActive {
		t.Fatalf("pick-theme = %v after gate satisfied, want Active", pick.State())
	}
	rt.Flags["theme-picked"].Fire()
	if pick.State() != guide.ItemCompleted {
		t.Fatalf("pick-theme = %v after completion flag, want Completed", pick.State())
	}

	outro := g.Item("outro")
	if outro.State() != guide.ItemActive {
		t.Fatalf("outro = %v, want Active (open trigger)", outro.State())
	}
	outro.Complete()

	if g.State() != guide.GroupCompleted || !rt.Manager.Done() {
		t.Fatalf("group = %v done = %v, want Completed/true", g.State(), rt.Manager.Done())
	}
}

func keys(m map[string]*condition.Flag) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
