package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/store"
)

// HistoryCmd groups the search history subcommands
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"" default:"1" help:"List recent searches"`
	Clear HistoryClearCmd `cmd:"" help:"Forget recent searches"`
}

// HistoryListCmd prints recent searches, most recent first
type HistoryListCmd struct{}

// HistoryClearCmd removes all recent searches
type HistoryClearCmd struct{}

// ThemeCmd prints or changes the saved UI theme
type ThemeCmd struct {
	Value string `arg:"" optional:"" help:"light, dark or toggle"`
}

func (h *HistoryListCmd) Run() error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		recent, err := st.Recent(ctx)
		if err != nil {
			return err
		}
		if len(recent) == 0 {
			_, err = fmt.Fprintln(stdout, "No recent searches.")
			return err
		}
		for i, q := range recent {
			if _, err := fmt.Fprintf(stdout, "%2d. %s\n", i+1, q); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *HistoryClearCmd) Run() error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		if err := st.ClearRecent(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(stdout, "Search history cleared.")
		return err
	})
}

func (t *ThemeCmd) Run() error {
	return withStore(func(ctx context.Context, st *store.Store) error {
		current, err := st.Theme(ctx)
		if err != nil {
			return err
		}

		next := current
		switch t.Value {
		case "":
			_, err = fmt.Fprintln(stdout, current)
			return err
		case "toggle":
			next = current.Toggle()
		default:
			if next, err = store.ParseTheme(t.Value); err != nil {
				return err
			}
		}

		if err := st.SetTheme(ctx, next); err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "Theme set to %s\n", next)
		return err
	})
}

func withStore(fn func(ctx context.Context, st *store.Store) error) error {
	ctx := context.Background()
	st, err := openStore(ctx, config.Load())
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, st)
}
