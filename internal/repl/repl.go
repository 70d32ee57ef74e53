// Package repl is a line-oriented search shell.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/peterh/liner"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/output"
	"github.com/lepinkainen/bookfinder/internal/search"
)

const (
	prompt         = "bookfinder> "
	defaultTimeout = 10 * time.Second
)

const helpText = `Type a title to search. Commands:
  :n / :p        next / previous page
  :page N        jump to page N
  :retry         run the current query again
  :show N        details for result N
  :sort ORDER    relevance, newest or oldest
  :q             quit
`

// Recorder saves successful queries. It is optional.
type Recorder interface {
	AddRecent(ctx context.Context, query string) ([]string, error)
}

// Options configures a Session.
type Options struct {
	Searcher search.Searcher
	Recorder Recorder
	Out      io.Writer
	PerPage  int
	Timeout  time.Duration
	CoverURL func(coverID *int) string
	// Recent seeds line history, most recent first.
	Recent []string
}

// Session executes commands against one search controller.
type Session struct {
	searcher   search.Searcher
	recorder   Recorder
	out        io.Writer
	timeout    time.Duration
	coverURL   func(*int) string
	controller *search.Controller
	order      search.Order
}

// NewSession creates a Session writing to opts.Out.
func NewSession(opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CoverURL == nil {
		opts.CoverURL = func(id *int) string {
			return openlibrary.CoverURL(id, openlibrary.CoverLarge)
		}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Session{
		searcher:   opts.Searcher,
		recorder:   opts.Recorder,
		out:        opts.Out,
		timeout:    opts.Timeout,
		coverURL:   opts.CoverURL,
		controller: search.New(opts.PerPage),
		order:      search.OrderRelevance,
	}
}

// State exposes the controller snapshot.
func (s *Session) State() search.State {
	return s.controller.Snapshot()
}

// Execute runs one input line. It reports whether the user asked to quit.
// Command errors are printed, not returned; the returned error is only for
// failures writing output.
func (s *Session) Execute(ctx context.Context, line string) (bool, error) {
	cmd, err := Parse(line)
	if err != nil {
		_, werr := fmt.Fprintln(s.out, err)
		return false, werr
	}

	switch cmd.Kind {
	case KindNone:
		return false, nil
	case KindQuit:
		return true, nil
	case KindHelp:
		_, err := io.WriteString(s.out, helpText)
		return false, err
	case KindQuery:
		return false, s.fetch(ctx, s.controller.SubmitQuery(cmd.Text))
	case KindNext:
		return false, s.gotoPage(ctx, s.controller.Snapshot().Page+1)
	case KindPrev:
		return false, s.gotoPage(ctx, s.controller.Snapshot().Page-1)
	case KindPage:
		return false, s.gotoPage(ctx, cmd.N)
	case KindRetry:
		return false, s.fetch(ctx, s.controller.Retry())
	case KindSort:
		s.order = cmd.Order
		return false, s.printResults()
	case KindShow:
		return false, s.show(cmd.N)
	}
	return false, nil
}

func (s *Session) gotoPage(ctx context.Context, p int) error {
	state := s.controller.Snapshot()
	if state.Query == "" {
		_, err := fmt.Fprintln(s.out, "Nothing to page through yet.")
		return err
	}
	total := s.controller.TotalPages()
	if p < 1 || p > total {
		_, err := fmt.Fprintf(s.out, "Page %d is out of range (1-%d).\n", p, total)
		return err
	}
	return s.fetch(ctx, s.controller.SetPage(p))
}

func (s *Session) fetch(ctx context.Context, fetch *search.Fetch) error {
	if fetch == nil {
		_, err := fmt.Fprintln(s.out, "Enter a title to search.")
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.controller.Resolve(ctx, s.searcher, fetch)

	state := s.controller.Snapshot()
	if state.Status == search.StatusError {
		_, err := fmt.Fprintln(s.out, state.ErrorMessage)
		return err
	}

	if s.recorder != nil && len(state.Results.Results) > 0 {
		if _, err := s.recorder.AddRecent(ctx, state.Query); err != nil {
			slog.Warn("Failed to save search history", "error", err)
		}
	}
	return s.printResults()
}

func (s *Session) printResults() error {
	state := s.controller.Snapshot()
	if state.Status != search.StatusLoaded {
		_, err := fmt.Fprintln(s.out, "No results to show.")
		return err
	}
	return output.Render(s.out, output.NewDocument(state, s.order), output.FormatTable)
}

// show accepts the row number printed in the results table.
func (s *Session) show(n int) error {
	state := s.controller.Snapshot()
	results := search.Sort(state.Results.Results, s.order)
	idx := n - (state.Page-1)*state.PerPage - 1
	if idx < 0 || idx >= len(results) {
		_, err := fmt.Fprintf(s.out, "No result numbered %d on this page.\n", n)
		return err
	}
	book := results[idx]
	return output.RenderDetail(s.out, book, s.coverURL(book.CoverID))
}

// Run reads lines from the terminal until :q or EOF.
func Run(ctx context.Context, opts Options) error {
	if opts.Searcher == nil {
		return fmt.Errorf("repl: searcher is required")
	}

	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)

	history := slices.Clone(opts.Recent)
	slices.Reverse(history)
	for _, q := range history {
		line.AppendHistory(q)
	}

	session := NewSession(opts)
	if _, err := io.WriteString(session.out, "bookfinder shell, :help for commands\n"); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if cmd, perr := Parse(input); perr == nil && cmd.Kind == KindQuery {
			line.AppendHistory(cmd.Text)
		}

		quit, err := session.Execute(ctx, input)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
