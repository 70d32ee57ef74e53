package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/search"
	"github.com/lepinkainen/bookfinder/internal/store"
	"github.com/lepinkainen/bookfinder/internal/testutil"
)

const testDebounce = 20 * time.Millisecond

type call struct {
	Query string
	Page  int
}

// fakeSearcher serves canned pages. A query with a gate blocks until the gate
// is closed.
type fakeSearcher struct {
	mu    sync.Mutex
	calls []call
	pages map[string]openlibrary.SearchPage
	fail  map[string]bool
	gates map[string]chan struct{}
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		pages: map[string]openlibrary.SearchPage{},
		fail:  map[string]bool{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeSearcher) Search(ctx context.Context, query string, page, _ int) (openlibrary.SearchPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{Query: query, Page: page})
	gate := f.gates[query]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return openlibrary.SearchPage{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[query] {
		return openlibrary.SearchPage{}, errors.New("upstream unavailable")
	}
	return f.pages[query], nil
}

func (f *fakeSearcher) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeSearcher) setFail(query string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[query] = fail
}

func pageOf(prefix string, n, total int) openlibrary.SearchPage {
	books := make([]openlibrary.Book, n)
	for i := range books {
		books[i] = openlibrary.Book{
			Key:         fmt.Sprintf("/works/%s%d", prefix, i),
			Title:       fmt.Sprintf("%s %d", prefix, i),
			AuthorNames: []string{"Author"},
		}
	}
	return openlibrary.SearchPage{Results: books, TotalFound: total}
}

// harness is a minimal event loop: commands run on goroutines and their
// messages are fed back into Update on the test goroutine.
type harness struct {
	t    *testing.T
	m    *Model
	msgs chan tea.Msg
	done chan struct{}
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}

	h := &harness{
		t:    t,
		m:    New(context.Background(), opts),
		msgs: make(chan tea.Msg, 256),
		done: make(chan struct{}),
	}
	t.Cleanup(func() {
		close(h.done)
		h.m.Close()
	})
	h.exec(h.m.Init())
	return h
}

func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() {
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				h.exec(c)
			}
			return
		}
		if msg == nil {
			return
		}
		select {
		case h.msgs <- msg:
		case <-h.done:
		}
	}()
}

func (h *harness) send(msg tea.Msg) {
	_, cmd := h.m.Update(msg)
	h.exec(cmd)
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) press(k tea.KeyType) {
	h.send(tea.KeyMsg{Type: k})
}

func (h *harness) waitUntil(desc string, cond func() bool) {
	h.t.Helper()

	deadline := time.After(3 * time.Second)
	for !cond() {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-deadline:
			h.t.Fatalf("timed out waiting for %s (state %+v)", desc, h.m.State())
		}
	}
}

func (h *harness) loaded(query string, page int) func() bool {
	return func() bool {
		s := h.m.State()
		return s.Status == search.StatusLoaded && s.Query == query && s.Page == page
	}
}

func TestTypingCoalescesIntoOneSearch(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["dune"] = pageOf("dune", 20, 45)
	h := newHarness(t, Options{Searcher: searcher})

	h.typeText("dune")
	assert.True(t, h.m.debouncer.Pending())

	h.waitUntil("dune to load", h.loaded("dune", 1))

	assert.Equal(t, []call{{Query: "dune", Page: 1}}, searcher.Calls())
	assert.Equal(t, 3, h.m.State().TotalPages())
	assert.Contains(t, h.m.View(), "45 books found")
	assert.Contains(t, h.m.View(), "page 1 of 3")
}

func TestEnterSearchesImmediately(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["dune"] = pageOf("dune", 3, 3)
	h := newHarness(t, Options{Searcher: searcher, Debounce: time.Hour})

	h.typeText("dune")
	h.press(tea.KeyEnter)

	h.waitUntil("dune to load", h.loaded("dune", 1))
	assert.False(t, h.m.debouncer.Pending())
}

func TestPaginationKeys(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["dune"] = pageOf("dune", 20, 45)
	h := newHarness(t, Options{Searcher: searcher})

	h.typeText("dune")
	h.waitUntil("first page", h.loaded("dune", 1))

	h.press(tea.KeyDown)
	require.Equal(t, focusResults, h.m.focus)

	h.press(tea.KeyRight)
	h.waitUntil("second page", h.loaded("dune", 2))

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	h.waitUntil("last page", h.loaded("dune", 3))

	// Already on the last page: no request.
	h.press(tea.KeyRight)
	assert.Equal(t, 3, h.m.State().Page)

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	h.waitUntil("first page again", h.loaded("dune", 1))

	assert.Equal(t, []call{
		{Query: "dune", Page: 1},
		{Query: "dune", Page: 2},
		{Query: "dune", Page: 3},
		{Query: "dune", Page: 1},
	}, searcher.Calls())
}

func TestFailedSearchShowsErrorAndRetries(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["xyz"] = pageOf("xyz", 2, 2)
	searcher.setFail("xyz", true)
	h := newHarness(t, Options{Searcher: searcher})

	h.typeText("xyz")
	h.waitUntil("error", func() bool { return h.m.State().Status == search.StatusError })
	assert.Contains(t, h.m.View(), search.FetchErrorMessage)

	searcher.setFail("xyz", false)
	h.press(tea.KeyCtrlR)
	h.waitUntil("retry to load", h.loaded("xyz", 1))
	assert.Len(t, h.m.State().Results.Results, 2)
}

func TestSlowStaleResponseIsDiscarded(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["a"] = pageOf("a", 5, 5)
	searcher.pages["b"] = pageOf("b", 2, 2)
	gate := make(chan struct{})
	searcher.gates["a"] = gate
	h := newHarness(t, Options{Searcher: searcher, Debounce: time.Hour})

	h.typeText("a")
	h.press(tea.KeyEnter)
	h.waitUntil("a to start", func() bool { return len(searcher.Calls()) == 1 })

	h.press(tea.KeyBackspace)
	h.typeText("b")
	h.press(tea.KeyEnter)
	h.waitUntil("b to load", h.loaded("b", 1))

	close(gate)
	seq := h.m.State().Seq
	// Give the released request time to complete and be processed.
	deadline := time.After(200 * time.Millisecond)
loop:
	for {
		select {
		case msg := <-h.msgs:
			h.send(msg)
		case <-deadline:
			break loop
		}
	}

	state := h.m.State()
	assert.Equal(t, "b", state.Query)
	assert.Equal(t, seq, state.Seq)
	require.Len(t, state.Results.Results, 2)
	assert.Equal(t, "/works/b0", state.Results.Results[0].Key)
}

func TestClearingInputResetsWithoutSearching(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["ab"] = pageOf("ab", 2, 2)
	h := newHarness(t, Options{Searcher: searcher})

	h.typeText("ab")
	h.waitUntil("ab to load", h.loaded("ab", 1))

	h.press(tea.KeyBackspace)
	h.press(tea.KeyBackspace)
	h.waitUntil("idle", func() bool { return h.m.State().Status == search.StatusIdle })

	assert.Empty(t, h.m.State().Results.Results)
	assert.Len(t, searcher.Calls(), 1)
	assert.Contains(t, h.m.View(), "Start typing a title")
}

func TestInitialQueryLoadsOnStart(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["dune"] = pageOf("dune", 1, 1)
	h := newHarness(t, Options{Searcher: searcher, InitialQuery: "dune"})

	h.waitUntil("initial query", h.loaded("dune", 1))
	assert.Equal(t, "dune", h.m.input.Value())
}

func TestThemeToggleIsPersisted(t *testing.T) {
	ctx := context.Background()
	prefs, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefs.Close() })

	h := newHarness(t, Options{Searcher: newFakeSearcher(), Prefs: prefs, Theme: store.ThemeDark})
	h.press(tea.KeyCtrlT)
	assert.Equal(t, store.ThemeLight, h.m.theme)
	assert.Contains(t, h.m.View(), "theme: light")

	h.waitUntil("theme saved", func() bool {
		theme, err := prefs.Theme(ctx)
		return err == nil && theme == store.ThemeLight
	})
}

func TestRecentSearchesAreSavedAndCycled(t *testing.T) {
	ctx := context.Background()
	prefs, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefs.Close() })
	_, err = prefs.AddRecent(ctx, "emma")
	require.NoError(t, err)

	searcher := newFakeSearcher()
	searcher.pages["dune"] = pageOf("dune", 1, 1)
	searcher.pages["emma"] = pageOf("emma", 1, 1)

	h := newHarness(t, Options{Searcher: searcher, Prefs: prefs, Recent: []string{"emma"}})

	h.typeText("dune")
	h.waitUntil("dune to load", h.loaded("dune", 1))
	h.waitUntil("history updated", func() bool { return len(h.m.recent) == 2 })
	assert.Equal(t, []string{"dune", "emma"}, h.m.recent)

	// Clear the input, then tab through history.
	for range 4 {
		h.press(tea.KeyBackspace)
	}
	h.press(tea.KeyTab)
	h.press(tea.KeyTab)
	assert.Equal(t, "emma", h.m.input.Value())
	h.waitUntil("emma to load", h.loaded("emma", 1))
}

func TestDetailAndSortKeys(t *testing.T) {
	searcher := newFakeSearcher()
	page := pageOf("book", 2, 2)
	page.Results[0].FirstPublishYear = testutil.IntPtr(1950)
	page.Results[1].FirstPublishYear = testutil.IntPtr(2001)
	page.Results[1].CoverID = testutil.IntPtr(42)
	searcher.pages["book"] = page
	h := newHarness(t, Options{
		Searcher: searcher,
		CoverURL: func(id *int) string {
			if id == nil {
				return ""
			}
			return fmt.Sprintf("cover-%d", *id)
		},
	})

	h.typeText("book")
	h.waitUntil("book to load", h.loaded("book", 1))

	h.press(tea.KeyCtrlO)
	assert.Equal(t, search.OrderNewest, h.m.order)

	h.press(tea.KeyDown)
	h.press(tea.KeyEnter)
	require.True(t, h.m.detail)

	view := h.m.View()
	assert.Contains(t, view, "First published")
	assert.Contains(t, view, "2001")
	assert.Contains(t, view, "cover-42")

	h.press(tea.KeyEsc)
	assert.False(t, h.m.detail)
	h.press(tea.KeyEsc)
	assert.Equal(t, focusInput, h.m.focus)
}

func TestTypingInResultsReturnsToInput(t *testing.T) {
	searcher := newFakeSearcher()
	searcher.pages["ab"] = pageOf("ab", 2, 2)
	h := newHarness(t, Options{Searcher: searcher})

	h.typeText("ab")
	h.waitUntil("ab to load", h.loaded("ab", 1))
	h.press(tea.KeyDown)
	require.Equal(t, focusResults, h.m.focus)

	h.typeText("c")
	assert.Equal(t, focusInput, h.m.focus)
	assert.Equal(t, "abc", h.m.input.Value())
}

func TestEscQuitsFromInput(t *testing.T) {
	m := New(context.Background(), Options{Searcher: newFakeSearcher()})
	t.Cleanup(m.Close)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestRun(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })

	var ran bool
	runProgram = func(m tea.Model) (tea.Model, error) {
		ran = true
		return m, nil
	}

	require.NoError(t, Run(context.Background(), Options{Searcher: newFakeSearcher()}))
	assert.True(t, ran)

	assert.Error(t, Run(context.Background(), Options{}))
}

func TestRunPropagatesProgramError(t *testing.T) {
	orig := runProgram
	t.Cleanup(func() { runProgram = orig })

	runProgram = func(m tea.Model) (tea.Model, error) {
		return m, errors.New("no tty")
	}
	assert.ErrorContains(t, Run(context.Background(), Options{Searcher: newFakeSearcher()}), "no tty")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a   b", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "åäö...", truncate("åäöåäöåäö", 6))
}
