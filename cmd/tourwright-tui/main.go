// Package main provides the tourwright-tui binary — Bubble Tea terminal UI.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tourwright/tourwright/pkg/tour"
	"github.com/tourwright/tourwright/pkg/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: tourwright-tui <tour.yaml>")
		os.Exit(1)
	}

	t, errs := tour.ValidateFile(os.Args[1])
	failed := false
	for _, e := range errs {
		if e.Severity != "warning" {
			fmt.Fprintf(os.Stderr, "  [%s] %s\n", e.Phase, e.Message)
			failed = true
		}
	}
	if failed {
		fmt.Fprintln(os.Stderr, "Validation failed")
		os.Exit(1)
	}

	model, err := tui.NewModel(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
