package diagram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tourwright/tourwright/pkg/tour"
)

func twoStepTour() *tour.Tour {
	return &tour.Tour{
		APIVersion: "tour/v1",
		Meta:       tour.Meta{Name: "Demo"},
		Groups: []tour.Group{{
			ID:   "intro",
			Name: "Introduction",
			Items: []tour.Item{
				{ID: "welcome", Description: "Say hello"},
				{
					ID: "click",
					Trigger: &tour.Condition{
						Kind: "all",
						Children: []*tour.Condition{
							{Kind: "flag", ID: "clicked"},
							{Kind: "not", Children: []*tour.Condition{{Kind: "expr", Expr: "skipped"}}},
						},
					},
				},
			},
		}},
	}
}

// TestGenerateMermaid verifies the flowchart structure: start and done
// terminals, one subgraph per group, and a trigger-labelled edge between
// consecutive steps.
func TestGenerateMermaid(t *testing.T) {
	out, err := Generate(twoStepTour(), FormatMermaid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"flowchart TD",
		"START([Start])",
		`subgraph intro["Introduction"]`,
		`intro_welcome["Say hello"]`,
		"START --> intro_welcome",
		"intro_welcome -->|", // labelled edge to the gated step
		"all(clicked, not skipped)",
		"DONE([Done])",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
}

// TestGenerateASCII verifies the box layout aligns on a uniform width.
func TestGenerateASCII(t *testing.T) {
	out, err := Generate(twoStepTour(), FormatASCII)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "Demo") {
		t.Fatalf("ascii output missing tour name:\n%s", out)
	}
	if !strings.Contains(out, "Introduction [sequential]") {
		t.Fatalf("ascii output missing group header:\n%s", out)
	}
	if !strings.Contains(out, "welcome: Say hello") {
		t.Fatalf("ascii output missing step label:\n%s", out)
	}

	// Every box edge line must have the same display width.
	var widths []int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  ┌") || strings.HasPrefix(line, "  └") {
			widths = append(widths, len([]rune(line)))
		}
	}
	if len(widths) != 4 {
		t.Fatalf("got %d box edges, want 4:\n%s", len(widths), out)
	}
	for _, w := range widths {
		if w != widths[0] {
			t.Fatalf("box widths differ: %v", widths)
		}
	}
}

// TestGenerateRejectsUnknownFormat covers the error paths.
func TestGenerateRejectsUnknownFormat(t *testing.T) {
	if _, err := Generate(twoStepTour(), Format("svg")); err == nil {
		t.Fatal("unknown format accepted")
	}
	if _, err := Generate(nil, FormatMermaid); err == nil {
		t.Fatal("nil tour accepted")
	}
}

// TestTruncateKeepsRunesWhole verifies long non-ASCII labels are cut on
// rune boundaries so Mermaid output stays valid UTF-8.
func TestTruncateKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("画面", 30)
	got := truncate(long, 40)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncate(%q) = %q, want ellipsis suffix", long, got)
	}

	doc := twoStepTour()
	doc.Groups[0].Items[0].Description = long
	out, err := Generate(doc, FormatMermaid)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !utf8.ValidString(out) {
		t.Fatal("mermaid output contains invalid UTF-8")
	}
}

// TestSafeID verifies Mermaid id sanitization.
func TestSafeID(t *testing.T) {
	if got := safeID("group-1.step 2"); got != "group_1_step_2" {
		t.Fatalf("safeID = %q, want group_1_step_2", got)
	}
}
