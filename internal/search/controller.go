// Package search sequences query submission, pagination and asynchronous
// search completion for one interactive session.
//
// The Controller is meant to be driven from a single event loop (a Bubble Tea
// Update function, a REPL loop). Network calls happen in Fetch.Run, which may
// run on any goroutine; its Completion must be handed back to the loop and
// applied with Complete. Completions from superseded fetches are discarded.
package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/pagination"
)

const (
	// DefaultPerPage is the page size requested from the search API.
	DefaultPerPage = 20
	// FetchErrorMessage is shown to the user whenever a fetch fails.
	FetchErrorMessage = "Failed to fetch results. Try again."
)

// Searcher fetches one page of results.
type Searcher interface {
	Search(ctx context.Context, query string, page, perPage int) (openlibrary.SearchPage, error)
}

// Status is the coarse state of the session.
type Status int

const (
	// StatusIdle means no query has been issued, or the query was cleared.
	StatusIdle Status = iota
	// StatusLoading means a fetch is outstanding.
	StatusLoading
	// StatusLoaded means the latest fetch succeeded.
	StatusLoaded
	// StatusError means the latest fetch failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of the session.
type State struct {
	Query        string
	Page         int
	PerPage      int
	Results      openlibrary.SearchPage
	Status       Status
	ErrorMessage string
	// Seq is incremented for every fetch started and every query reset.
	Seq uint64
}

// TotalPages is derived from the reported total, falling back to the number
// of results actually held when the total is missing or smaller.
func (s State) TotalPages() int {
	total := max(s.Results.TotalFound, len(s.Results.Results))
	return pagination.TotalPages(total, s.PerPage)
}

// Fetch describes a search the caller must run with Run.
type Fetch struct {
	Seq     uint64
	Query   string
	Page    int
	PerPage int
}

// Completion carries the outcome of a Fetch back to the Controller.
type Completion struct {
	Seq  uint64
	Page openlibrary.SearchPage
	Err  error
}

// Run performs the fetch. It is safe to call from any goroutine.
func (f Fetch) Run(ctx context.Context, searcher Searcher) Completion {
	page, err := searcher.Search(ctx, f.Query, f.Page, f.PerPage)
	return Completion{Seq: f.Seq, Page: page, Err: err}
}

// Controller owns the session state.
type Controller struct {
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitialQuery seeds the query without fetching; call Retry to load it.
func WithInitialQuery(q string) Option {
	return func(c *Controller) {
		c.state.Query = strings.TrimSpace(q)
	}
}

// New creates a Controller. A non-positive perPage uses DefaultPerPage.
func New(perPage int, opts ...Option) *Controller {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	c := &Controller{
		state: State{
			Page:    1,
			PerPage: perPage,
			Status:  StatusIdle,
			Results: openlibrary.SearchPage{Results: []openlibrary.Book{}},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state. The result page is shared but never
// mutated in place.
func (c *Controller) Snapshot() State {
	return c.state
}

// TotalPages returns the derived page count of the current state.
func (c *Controller) TotalPages() int {
	return c.state.TotalPages()
}

// SubmitQuery replaces the query and resets to the first page. An empty query
// clears the results and returns nil; anything else returns the fetch to run.
func (c *Controller) SubmitQuery(q string) *Fetch {
	c.state.Query = strings.TrimSpace(q)
	c.state.Page = 1

	if c.state.Query == "" {
		// Invalidate any fetch still in flight for the previous query.
		c.state.Seq++
		c.state.Results = openlibrary.SearchPage{Results: []openlibrary.Book{}}
		c.state.Status = StatusIdle
		c.state.ErrorMessage = ""
		return nil
	}

	return c.startFetch()
}

// SetPage moves to page p, clamped to [1, TotalPages]. It returns the fetch to
// run, or nil when there is no query.
func (c *Controller) SetPage(p int) *Fetch {
	c.state.Page = pagination.Clamp(p, c.TotalPages())
	if c.state.Query == "" {
		return nil
	}
	return c.startFetch()
}

// Retry re-submits the current query from the first page.
func (c *Controller) Retry() *Fetch {
	return c.SubmitQuery(c.state.Query)
}

// Complete applies a finished fetch. It reports false, leaving the state
// untouched, when the completion belongs to a superseded fetch.
func (c *Controller) Complete(done Completion) bool {
	if done.Seq != c.state.Seq {
		slog.Debug("Discarding stale search completion",
			"seq", done.Seq,
			"current", c.state.Seq,
			"error", done.Err,
		)
		return false
	}

	if done.Err != nil {
		slog.Warn("Search failed", "query", c.state.Query, "page", c.state.Page, "error", done.Err)
		c.state.Status = StatusError
		c.state.ErrorMessage = FetchErrorMessage
		return true
	}

	results := done.Page
	if results.Results == nil {
		results.Results = []openlibrary.Book{}
	}
	c.state.Results = results
	c.state.Status = StatusLoaded
	c.state.ErrorMessage = ""
	return true
}

// Resolve runs fetch synchronously and applies its completion. It is a
// convenience for loops without their own asynchronous dispatch.
func (c *Controller) Resolve(ctx context.Context, searcher Searcher, fetch *Fetch) bool {
	if fetch == nil {
		return false
	}
	return c.Complete(fetch.Run(ctx, searcher))
}

func (c *Controller) startFetch() *Fetch {
	c.state.Seq++
	c.state.Status = StatusLoading
	c.state.ErrorMessage = ""

	return &Fetch{
		Seq:     c.state.Seq,
		Query:   c.state.Query,
		Page:    c.state.Page,
		PerPage: c.state.PerPage,
	}
}
