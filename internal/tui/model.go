// Package tui provides the interactive terminal search UI.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/bookfinder/internal/debounce"
	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/search"
	"github.com/lepinkainen/bookfinder/internal/store"
)

const (
	defaultWidth      = 80
	defaultListHeight = 10
	defaultTimeout    = 10 * time.Second
	eventBuffer       = 32
)

// Prefs persists UI preferences. It is optional.
type Prefs interface {
	SetTheme(ctx context.Context, t store.Theme) error
	AddRecent(ctx context.Context, query string) ([]string, error)
}

// Options configures the search UI.
type Options struct {
	Searcher     search.Searcher
	Prefs        Prefs
	PerPage      int
	Debounce     time.Duration
	Timeout      time.Duration
	Theme        store.Theme
	Recent       []string
	InitialQuery string
	// CoverURL builds the cover link shown in the detail panel.
	CoverURL func(coverID *int) string
}

type focus int

const (
	focusInput focus = iota
	focusResults
)

type (
	debounceMsg   struct{ event debounce.Event }
	completionMsg struct{ completion search.Completion }
	recentMsg     struct{ recent []string }
	prefsErrMsg   struct{ err error }
)

// Model is the Bubble Tea model of the search screen. Its Update method is
// the only writer of the search controller.
type Model struct {
	ctx        context.Context
	searcher   search.Searcher
	prefs      Prefs
	controller *search.Controller
	debouncer  *debounce.Debouncer
	events     chan debounce.Event
	done       chan struct{}
	timeout    time.Duration
	coverURL   func(*int) string

	input   textinput.Model
	spinner spinner.Model

	focus      focus
	cursor     int
	detail     bool
	order      search.Order
	theme      store.Theme
	styles     styles
	recent     []string
	recentIdx  int
	width      int
	listHeight int
	spinning   bool
}

// New creates the model. Call Close when the program has exited.
func New(ctx context.Context, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if !opts.Theme.Valid() {
		opts.Theme = store.ThemeDark
	}
	if opts.CoverURL == nil {
		opts.CoverURL = func(id *int) string {
			return openlibrary.CoverURL(id, openlibrary.CoverMedium)
		}
	}

	m := &Model{
		ctx:        ctx,
		searcher:   opts.Searcher,
		prefs:      opts.Prefs,
		events:     make(chan debounce.Event, eventBuffer),
		done:       make(chan struct{}),
		timeout:    opts.Timeout,
		coverURL:   opts.CoverURL,
		order:      search.OrderRelevance,
		theme:      opts.Theme,
		styles:     newStyles(opts.Theme),
		recent:     append([]string(nil), opts.Recent...),
		recentIdx:  -1,
		width:      defaultWidth,
		listHeight: defaultListHeight,
	}

	m.controller = search.New(opts.PerPage, search.WithInitialQuery(opts.InitialQuery))
	m.debouncer = debounce.New(opts.Debounce, m.forward)

	m.input = textinput.New()
	m.input.Placeholder = "Search books by title"
	m.input.Prompt = "> "
	m.input.CharLimit = 200
	m.input.SetValue(m.controller.Snapshot().Query)
	m.input.Focus()

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	return m
}

// forward runs on timer goroutines and must never block after shutdown.
func (m *Model) forward(ev debounce.Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// Close stops the debouncer and releases any goroutine waiting to deliver
// an event.
func (m *Model) Close() {
	m.debouncer.Stop()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// State exposes the controller snapshot.
func (m *Model) State() search.State {
	return m.controller.Snapshot()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.listen()}
	if fetch := m.controller.Retry(); fetch != nil {
		cmds = append(cmds, m.runFetch(fetch))
	}
	return tea.Batch(cmds...)
}

func (m *Model) listen() tea.Cmd {
	events, done := m.events, m.done
	return func() tea.Msg {
		select {
		case ev := <-events:
			return debounceMsg{event: ev}
		case <-done:
			return nil
		}
	}
}

func (m *Model) runFetch(fetch *search.Fetch) tea.Cmd {
	if fetch == nil {
		return nil
	}
	f, searcher, timeout, parent := *fetch, m.searcher, m.timeout, m.ctx
	cmds := []tea.Cmd{func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return completionMsg{completion: f.Run(ctx, searcher)}
	}}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) busy() bool {
	return m.debouncer.Pending() || m.controller.Snapshot().Status == search.StatusLoading
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = max(40, msg.Width)
		m.listHeight = max(3, (msg.Height-12)/2)
		m.input.Width = max(10, m.width-6)
		return m, nil

	case debounceMsg:
		return m, tea.Batch(m.listen(), m.handleDebounce(msg.event))

	case completionMsg:
		if !m.controller.Complete(msg.completion) {
			return m, nil
		}
		m.cursor = 0
		state := m.controller.Snapshot()
		if state.Status == search.StatusLoaded && len(state.Results.Results) > 0 {
			return m, m.saveRecent(state.Query)
		}
		return m, nil

	case recentMsg:
		m.recent = msg.recent
		m.recentIdx = -1
		return m, nil

	case prefsErrMsg:
		slog.Warn("Failed to save preferences", "error", msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDebounce(ev debounce.Event) tea.Cmd {
	if !m.debouncer.Current(ev) {
		slog.Debug("Dropping superseded query", "query", ev.Query, "seq", ev.Seq)
		return nil
	}
	m.detail = false
	m.cursor = 0
	if ev.Empty {
		m.controller.SubmitQuery("")
		m.focus = focusInput
		return nil
	}
	return m.runFetch(m.controller.SubmitQuery(ev.Query))
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+t":
		return m, m.toggleTheme()
	case "ctrl+o":
		m.order = m.order.Next()
		m.cursor = 0
		return m, nil
	case "ctrl+r":
		m.detail = false
		return m, m.runFetch(m.controller.Retry())
	case "pgdown":
		return m, m.gotoPage(m.controller.Snapshot().Page + 1)
	case "pgup":
		return m, m.gotoPage(m.controller.Snapshot().Page - 1)
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		m.debouncer.Flush()
		return m, nil
	case "down":
		if len(m.controller.Snapshot().Results.Results) > 0 {
			m.focus = focusResults
			m.input.Blur()
		}
		return m, nil
	case "tab":
		if len(m.recent) == 0 {
			return m, nil
		}
		m.recentIdx = (m.recentIdx + 1) % len(m.recent)
		m.input.SetValue(m.recent[m.recentIdx])
		m.input.CursorEnd()
		m.debouncer.Push(m.input.Value())
		m.debouncer.Flush()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.recentIdx = -1
		m.debouncer.Push(after)
		if !m.spinning && m.debouncer.Pending() {
			m.spinning = true
			cmd = tea.Batch(cmd, m.spinner.Tick)
		}
	}
	return m, cmd
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.controller.Snapshot().Results.Results

	switch msg.String() {
	case "esc":
		if m.detail {
			m.detail = false
			return m, nil
		}
		return m, m.focusInput()
	case "/":
		m.detail = false
		return m, m.focusInput()
	case "enter":
		if len(results) > 0 {
			m.detail = !m.detail
		}
		return m, nil
	case "up", "k":
		if m.cursor == 0 {
			m.detail = false
			return m, m.focusInput()
		}
		m.cursor--
		return m, nil
	case "down", "j":
		if m.cursor < len(results)-1 {
			m.cursor++
		}
		return m, nil
	case "left", "h":
		return m, m.gotoPage(m.controller.Snapshot().Page - 1)
	case "right", "l":
		return m, m.gotoPage(m.controller.Snapshot().Page + 1)
	case "[":
		return m, m.gotoPage(1)
	case "]":
		return m, m.gotoPage(m.controller.TotalPages())
	}

	// Any other printable key goes back to the query.
	if msg.Type == tea.KeyRunes {
		cmd := m.focusInput()
		_, inputCmd := m.handleInputKey(msg)
		return m, tea.Batch(cmd, inputCmd)
	}
	return m, nil
}

func (m *Model) focusInput() tea.Cmd {
	m.focus = focusInput
	return m.input.Focus()
}

func (m *Model) gotoPage(p int) tea.Cmd {
	state := m.controller.Snapshot()
	target := max(1, min(p, m.controller.TotalPages()))
	if state.Query == "" || target == state.Page {
		return nil
	}
	m.cursor = 0
	m.detail = false
	return m.runFetch(m.controller.SetPage(target))
}

func (m *Model) toggleTheme() tea.Cmd {
	m.theme = m.theme.Toggle()
	m.styles = newStyles(m.theme)
	if m.prefs == nil {
		return nil
	}
	prefs, ctx, theme := m.prefs, m.ctx, m.theme
	return func() tea.Msg {
		if err := prefs.SetTheme(ctx, theme); err != nil {
			return prefsErrMsg{err: err}
		}
		return nil
	}
}

func (m *Model) saveRecent(query string) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	prefs, ctx := m.prefs, m.ctx
	return func() tea.Msg {
		recent, err := prefs.AddRecent(ctx, query)
		if err != nil {
			return prefsErrMsg{err: err}
		}
		return recentMsg{recent: recent}
	}
}

// visibleResults returns the current page in display order.
func (m *Model) visibleResults() []openlibrary.Book {
	return search.Sort(m.controller.Snapshot().Results.Results, m.order)
}

func (m *Model) selected() (openlibrary.Book, bool) {
	results := m.visibleResults()
	if m.cursor < 0 || m.cursor >= len(results) {
		return openlibrary.Book{}, false
	}
	return results[m.cursor], true
}
