// Package diagram generates visual diagrams from parsed tours.
// Supports Mermaid flowchart and ASCII formats.
package diagram

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tourwright/tourwright/pkg/tour"
)

// Format represents the output diagram format.
type Format string

const (
	FormatMermaid Format = "mermaid"
	FormatASCII   Format = "ascii"
)

// Generate produces a diagram string from a parsed tour.
func Generate(t *tour.Tour, format Format) (string, error) {
	if t == nil {
		return "", fmt.Errorf("nil tour")
	}
	switch format {
	case FormatMermaid:
		return generateMermaid(t), nil
	case FormatASCII:
		return generateASCII(t), nil
	default:
		return "", fmt.Errorf("unsupported diagram format: %s", format)
	}
}

// --- Mermaid flowchart ---

func generateMermaid(t *tour.Tour) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("    START([Start])\n")

	prevExit := "START"
	for gi, g := range t.Groups {
		sub := safeID(g.ID)
		title := g.Name
		if title == "" {
			title = g.ID
		}
		b.WriteString(fmt.Sprintf("    subgraph %s[%q]\n", sub, title))
		for i, it := range g.Items {
			b.WriteString("        " + nodeDefinition(g.ID, it) + "\n")
			if i > 0 {
				prev := g.Items[i-1]
				label := truncate(conditionLabel(it.Trigger), 30)
				if label != "" {
					b.WriteString(fmt.Sprintf("        %s -->|%q| %s\n",
						itemNode(g.ID, prev.ID), label, itemNode(g.ID, it.ID)))
				} else {
					b.WriteString(fmt.Sprintf("        %s --> %s\n",
						itemNode(g.ID, prev.ID), itemNode(g.ID, it.ID)))
				}
			}
		}
		b.WriteString("    end\n")

		if len(g.Items) > 0 {
			b.WriteString(fmt.Sprintf("    %s --> %s\n", prevExit, itemNode(g.ID, g.Items[0].ID)))
			prevExit = itemNode(g.ID, g.Items[len(g.Items)-1].ID)
		}
		if gi == len(t.Groups)-1 {
			b.WriteString(fmt.Sprintf("    %s --> DONE([Done])\n", prevExit))
		}
	}
	return b.String()
}

func nodeDefinition(groupID string, it tour.Item) string {
	label := it.Description
	if label == "" {
		label = it.ID
	}
	return fmt.Sprintf("%s[%q]", itemNode(groupID, it.ID), truncate(label, 40))
}

func itemNode(groupID, itemID string) string {
	return safeID(groupID + "_" + itemID)
}

// conditionLabel renders a condition tree as a compact expression.
func conditionLabel(c *tour.Condition) string {
	if c == nil {
		return ""
	}
	switch c.Kind {
	case "flag":
		return c.ID
	case "expr":
		return c.Expr
	case "not":
		if len(c.Children) == 1 {
			return "not " + conditionLabel(c.Children[0])
		}
		return "not ?"
	default:
		parts := make([]string, 0, len(c.Children))
		for _, child := range c.Children {
			parts = append(parts, conditionLabel(child))
		}
		return c.Kind + "(" + strings.Join(parts, ", ") + ")"
	}
}

// safeID makes an identifier usable as a Mermaid node id.
func safeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// truncate bounds a label by display width without splitting runes.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if runewidth.StringWidth(s) <= max {
		return s
	}
	return runewidth.Truncate(s, max, "…")
}

// --- ASCII ---

func generateASCII(t *tour.Tour) string {
	var b strings.Builder

	name := t.Meta.Name
	if name == "" {
		name = "Tour"
	}

	// Uniform box width so every box and connector aligns, accounting for
	// wide runes in step descriptions.
	width := runewidth.StringWidth(name)
	for _, g := range t.Groups {
		for _, it := range g.Items {
			if w := runewidth.StringWidth(asciiLabel(it)); w > width {
				width = w
			}
		}
	}
	width += 4

	b.WriteString("╔" + strings.Repeat("═", width) + "╗\n")
	b.WriteString("║" + centerPad(name, width) + "║\n")
	b.WriteString("╚" + strings.Repeat("═", width) + "╝\n")

	for _, g := range t.Groups {
		title := g.Name
		if title == "" {
			title = g.ID
		}
		b.WriteString("\n" + title + " [" + strategyName(g.Strategy) + "]\n")
		for i, it := range g.Items {
			if i > 0 {
				b.WriteString("    │\n")
			}
			label := asciiLabel(it)
			pad := width - 2 - runewidth.StringWidth(label)
			if pad < 0 {
				pad = 0
			}
			b.WriteString("  ┌" + strings.Repeat("─", width-2) + "┐\n")
			b.WriteString("  │" + label + strings.Repeat(" ", pad) + "│\n")
			b.WriteString("  └" + strings.Repeat("─", width-2) + "┘\n")
		}
	}
	return b.String()
}

func asciiLabel(it tour.Item) string {
	if it.Description != "" {
		return it.ID + ": " + it.Description
	}
	return it.ID
}

func strategyName(s string) string {
	if s == "" {
		return "sequential"
	}
	return s
}

func centerPad(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "")
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
