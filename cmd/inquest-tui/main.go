// Package main provides the inquest-tui binary — a Bubble Tea browser over
// a recorded results file (inquest run --results out.yaml).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ormasoftchile/inquest/pkg/runtime"
	"github.com/ormasoftchile/inquest/pkg/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: inquest-tui <results.yaml|results.json>")
		os.Exit(1)
	}
	filePath := os.Args[1]

	doc, err := runtime.LoadResultsFile(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(doc.Results) == 0 {
		fmt.Fprintf(os.Stderr, "%s contains no results\n", filePath)
		os.Exit(1)
	}

	model := tui.NewModel(filepath.Base(filePath), doc.Results)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
