package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/output"
	"github.com/lepinkainen/bookfinder/internal/search"
)

var newSearcher = func(cfg config.Config) search.Searcher {
	return newClient(cfg)
}

// SearchCmd runs a single search and prints one page of results
type SearchCmd struct {
	Query  []string `arg:"" help:"Title to search for"`
	Page   int      `short:"p" help:"Page to fetch" default:"1"`
	Format string   `short:"f" help:"Output format: table, json, yaml or toml" default:"table" enum:"table,json,yaml,yml,toml"`
	Sort   string   `help:"Result order: relevance, newest or oldest" default:"relevance" enum:"relevance,newest,oldest"`
	Save   bool     `help:"Record the query in search history" default:"true" negatable:""`
}

func (s *SearchCmd) Run() error {
	query := strings.TrimSpace(strings.Join(s.Query, " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}
	format, err := output.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	order, err := search.ParseOrder(s.Sort)
	if err != nil {
		return err
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// One searcher for both requests so they share a rate limiter.
	searcher := newSearcher(cfg)
	controller := search.New(cfg.PerPage)
	if !controller.Resolve(ctx, searcher, controller.SubmitQuery(query)) {
		return fmt.Errorf("search for %q did not complete", query)
	}
	if s.Page > 1 && controller.Snapshot().Status == search.StatusLoaded {
		controller.Resolve(ctx, searcher, controller.SetPage(s.Page))
	}

	state := controller.Snapshot()
	if state.Status == search.StatusError {
		return fmt.Errorf("search for %q failed: %s", query, state.ErrorMessage)
	}

	if s.Save && len(state.Results.Results) > 0 {
		recordRecent(ctx, cfg, query)
	}

	return output.Render(stdout, output.NewDocument(state, order), format)
}

func recordRecent(ctx context.Context, cfg config.Config, query string) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		warnPrefs(err)
		return
	}
	defer func() { _ = st.Close() }()

	if _, err := st.AddRecent(ctx, query); err != nil {
		warnPrefs(err)
	}
}
