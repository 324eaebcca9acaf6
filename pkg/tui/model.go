package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tourwright/tourwright/pkg/condition"
	"github.com/tourwright/tourwright/pkg/guide"
	"github.com/tourwright/tourwright/pkg/tour"
)

// tickMsg drives the engine frame loop.
type tickMsg time.Time

// Model is the top-level Bubble Tea model. It owns the tour runtime and
// advances it on every frame tick, so the whole engine stays on the UI
// goroutine.
type Model struct {
	doc *tour.Tour
	rt  *tour.Runtime

	spinner  spinner.Model
	progress progress.Model

	interval time.Duration
	paused   bool
	showHelp bool
	started  bool

	width  int
	height int
}

// NewModel builds the TUI model for a validated tour document.
func NewModel(doc *tour.Tour) (*Model, error) {
	rt, err := tour.Build(doc, tour.BuildConfig{})
	if err != nil {
		return nil, fmt.Errorf("build tour: %w", err)
	}

	interval := 100 * time.Millisecond
	if doc.Meta.TickInterval != "" {
		if d, err := time.ParseDuration(doc.Meta.TickInterval); err == nil {
			interval = d
		}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return &Model{
		doc:      doc,
		rt:       rt,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		interval: interval,
	}, nil
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tickCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-4, 60)
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if !m.started {
			for _, g := range m.rt.Manager.Groups() {
				m.rt.Manager.StartGroup(g.ID())
			}
			m.started = true
		}
		if !m.paused {
			m.rt.Manager.Update(now)
		}
		return m, m.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.rt.Manager.StopAll()
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, keys.Pause):
		m.rt.Manager.PauseAll()
		m.paused = true

	case key.Matches(msg, keys.Resume):
		m.rt.Manager.ResumeAll()
		m.paused = false

	case key.Matches(msg, keys.Fire):
		if it := m.currentItem(); it != nil && it.State() == guide.ItemWaiting {
			fireOrStart(it)
		}

	case key.Matches(msg, keys.Complete):
		if it := m.currentItem(); it != nil && it.State() == guide.ItemActive {
			fireOrComplete(it)
		}
	}
	return m, nil
}

// fireOrStart satisfies a waiting step's trigger: flag triggers fire so the
// normal condition path runs, anything else starts the step directly.
func fireOrStart(it *guide.Item) {
	if f, ok := it.Trigger().(*condition.Flag); ok {
		f.Fire()
		return
	}
	it.Start()
}

func fireOrComplete(it *guide.Item) {
	if f, ok := it.Completion().(*condition.Flag); ok {
		f.Fire()
		return
	}
	it.Complete()
}

// currentItem returns the in-flight step of the first running group.
func (m *Model) currentItem() *guide.Item {
	for _, g := range m.rt.Manager.Groups() {
		if g.State() != guide.GroupRunning && g.State() != guide.GroupPaused {
			continue
		}
		if cur := g.CurrentItem(); cur != nil && !cur.State().Terminal() {
			return cur
		}
	}
	return nil
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewHeader() + "\n\n")
	b.WriteString(m.viewSteps())
	b.WriteString("\n" + m.viewProgress() + "\n")

	if cur := m.currentItem(); cur != nil {
		b.WriteString("\n" + m.viewPanel(cur) + "\n")
	} else if m.rt.Manager.Done() {
		b.WriteString("\n" + outcomeBannerStyle.Render("Tour complete") + "\n")
	}

	if m.showHelp {
		b.WriteString("\n" + m.viewHelp())
	}
	b.WriteString("\n" + keyBarStyle.Render(keyBarText(m.paused, m.rt.Manager.Done())))
	return b.String()
}

func (m *Model) viewHeader() string {
	header := headerStyle.Render(m.doc.Meta.Name)
	for _, g := range m.rt.Manager.Groups() {
		if g.State() == guide.GroupRunning || g.State() == guide.GroupPaused {
			header += " " + groupBadgeStyle.Render(g.ID())
			break
		}
	}
	if m.paused {
		header += " " + errorStyle.Render("PAUSED")
	}
	return header
}

func (m *Model) viewSteps() string {
	var b strings.Builder
	for _, g := range m.rt.Manager.Groups() {
		name := g.Name()
		if name == "" {
			name = g.ID()
		}
		b.WriteString(groupHeading.Render(name) + "\n")
		for i, it := range g.Items() {
			b.WriteString("  " + m.stepLine(g, i, it) + "\n")
		}
	}
	return b.String()
}

func (m *Model) stepLine(g *guide.Group, idx int, it *guide.Item) string {
	label := it.ID()
	if it.Description() != "" {
		label += "  " + it.Description()
	}
	switch it.State() {
	case guide.ItemCompleted:
		return stepCompleted.Render(GlyphCompleted + " " + label)
	case guide.ItemFailed:
		return stepFailed.Render(GlyphFailed + " " + label)
	case guide.ItemCancelled:
		return stepCancelled.Render(GlyphCancelled + " " + label)
	case guide.ItemActive:
		return stepCurrent.Render(GlyphCurrent + " " + label)
	case guide.ItemWaiting:
		if idx == g.CurrentIndex() {
			return stepCurrent.Render(m.spinner.View() + " " + label)
		}
		return stepNormal.Render(GlyphWaiting + " " + label)
	default:
		return stepNormal.Render(GlyphPending + " " + label)
	}
}

func (m *Model) viewProgress() string {
	total, done := 0, 0
	for _, g := range m.rt.Manager.Groups() {
		for _, it := range g.Items() {
			total++
			if it.State() == guide.ItemCompleted {
				done++
			}
		}
	}
	if total == 0 {
		return ""
	}
	return m.progress.ViewAs(float64(done) / float64(total))
}

func (m *Model) viewPanel(it *guide.Item) string {
	title := it.ID()
	body := it.Description()
	if body == "" {
		body = "Waiting for the step's conditions."
	}
	content := panelTitle.Render(title) + "\n" + body
	width := min(m.width-2, 64)
	if width < 20 {
		width = 20
	}
	return panelBorder.Width(width).Render(content)
}

func (m *Model) viewHelp() string {
	lines := []string{
		"enter  fire the current step's trigger flag",
		"c      fire the completion flag (or complete directly)",
		"p/r    pause and resume all groups",
		"q      stop and quit",
	}
	return keyDescStyle.Render(strings.Join(lines, "\n"))
}
