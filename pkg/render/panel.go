// Package render provides terminal-facing Effect implementations: a styled
// highlight panel for interactive sessions and a scripted effect for
// headless runs. The orchestration core only sees the Effect interface.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tourwright/tourwright/pkg/guide"
)

// markdown renderer shared by all panels (auto style, no word-wrap — the
// panel border handles width).
var mdRenderer *glamour.TermRenderer

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err == nil {
		mdRenderer = r
	}
}

// renderMarkdown converts markdown to styled terminal output, falling back
// to the raw input if glamour is unavailable or rendering fails.
func renderMarkdown(md string) string {
	if mdRenderer == nil || strings.TrimSpace(md) == "" {
		return md
	}
	out, err := mdRenderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)

	panelTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	panelDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Panel is a terminal highlight effect: playing it draws a bordered panel
// with a title and a markdown body; pause, resume, and stop draw brief
// status lines. It never signals completion on its own — the host calls
// Finish when the highlighted interaction is done.
type Panel struct {
	guide.CompletionSignal

	out     io.Writer
	title   string
	body    string
	width   int
	playing bool
}

// NewPanel creates a panel effect writing to out. Width bounds the panel;
// zero means 60 columns.
func NewPanel(out io.Writer, title, body string, width int) *Panel {
	if width <= 0 {
		width = 60
	}
	return &Panel{out: out, title: title, body: body, width: width}
}

func (p *Panel) Play() error {
	title := p.title
	if title == "" {
		title = "Guide"
	}
	// Bound the title to the inner width, accounting for wide runes.
	inner := p.width - 4
	if runewidth.StringWidth(title) > inner {
		title = runewidth.Truncate(title, inner, "…")
	}
	content := panelTitle.Render(title)
	if body := renderMarkdown(p.body); strings.TrimSpace(body) != "" {
		content += "\n" + body
	}
	fmt.Fprintln(p.out, panelBorder.Width(p.width).Render(content))
	p.playing = true
	return nil
}

func (p *Panel) Stop() error {
	p.playing = false
	return nil
}

func (p *Panel) Pause() error {
	if p.playing {
		fmt.Fprintln(p.out, panelDim.Render("⏸ "+p.title))
	}
	return nil
}

func (p *Panel) Resume() error {
	if p.playing {
		fmt.Fprintln(p.out, panelDim.Render("▶ "+p.title))
	}
	return nil
}

// Finish signals completion to the owning item, if the panel is live.
func (p *Panel) Finish() {
	if !p.playing {
		return
	}
	p.playing = false
	p.SignalCompleted()
}
