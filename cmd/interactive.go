package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/repl"
	"github.com/lepinkainen/bookfinder/internal/store"
	"github.com/lepinkainen/bookfinder/internal/tui"
)

// TUICmd opens the interactive search screen
type TUICmd struct {
	Query []string `arg:"" optional:"" help:"Initial query"`
}

// REPLCmd opens the line-oriented search shell
type REPLCmd struct{}

func (t *TUICmd) Run() error {
	cfg := config.Load()
	ctx := context.Background()

	restore, err := logToFile(cfg.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	opts := tui.Options{
		PerPage:      cfg.PerPage,
		Debounce:     cfg.Debounce,
		Timeout:      cfg.Timeout,
		InitialQuery: strings.Join(t.Query, " "),
	}

	client := newClient(cfg)
	opts.Searcher = client
	opts.CoverURL = func(id *int) string {
		return client.CoverURL(id, openlibrary.ParseCoverSize(cfg.CoverSize))
	}

	st, theme, recent := loadPrefs(ctx, cfg)
	if st != nil {
		defer func() { _ = st.Close() }()
		opts.Prefs = st
	}
	opts.Theme = theme
	opts.Recent = recent

	return runTUI(ctx, opts)
}

func (r *REPLCmd) Run() error {
	cfg := config.Load()
	ctx := context.Background()

	client := newClient(cfg)
	opts := repl.Options{
		Searcher: client,
		Out:      stdout,
		PerPage:  cfg.PerPage,
		Timeout:  cfg.Timeout,
		CoverURL: func(id *int) string {
			return client.CoverURL(id, openlibrary.ParseCoverSize(cfg.CoverSize))
		},
	}

	st, _, recent := loadPrefs(ctx, cfg)
	if st != nil {
		defer func() { _ = st.Close() }()
		opts.Recorder = st
	}
	opts.Recent = recent

	return runREPL(ctx, opts)
}

// loadPrefs opens the store if possible. A missing or broken store only
// disables persistence.
func loadPrefs(ctx context.Context, cfg config.Config) (*store.Store, store.Theme, []string) {
	fallback, err := store.ParseTheme(cfg.Theme)
	if err != nil {
		fallback = store.ThemeDark
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		warnPrefs(err)
		return nil, fallback, nil
	}

	theme, err := st.Theme(ctx)
	if err != nil {
		warnPrefs(err)
		theme = fallback
	}
	recent, err := st.Recent(ctx)
	if err != nil {
		warnPrefs(err)
	}
	return st, theme, recent
}

func warnPrefs(err error) {
	slog.Warn("Preferences unavailable", "error", err)
}
