package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// Run shows the search screen until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Searcher == nil {
		return fmt.Errorf("tui: searcher is required")
	}

	m := New(ctx, opts)
	defer m.Close()

	if _, err := runProgram(m); err != nil {
		return fmt.Errorf("failed to run search UI: %w", err)
	}
	return nil
}
