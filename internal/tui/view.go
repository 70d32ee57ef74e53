package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/output"
	"github.com/lepinkainen/bookfinder/internal/pagination"
	"github.com/lepinkainen/bookfinder/internal/search"
)

const (
	inputHelp   = "type to search | enter search now | down results | tab recent | pgup/pgdn page | ctrl+o sort | ctrl+t theme | esc quit"
	resultsHelp = "up/down select | enter details | left/right page | [ ] first/last | / edit query | esc back"
)

func (m *Model) View() string {
	state := m.controller.Snapshot()

	sections := []string{
		m.styles.header.Render(fmt.Sprintf("bookfinder  sort: %s  theme: %s", m.order, m.theme)),
		m.input.View(),
		m.statusLine(state),
	}

	if len(state.Results.Results) > 0 {
		sections = append(sections, m.resultsView(), m.pagerView(state))
	}

	if m.detail {
		if book, ok := m.selected(); ok {
			sections = append(sections, m.detailView(book))
		}
	}

	help := inputHelp
	if m.focus == focusResults {
		help = resultsHelp
	}
	sections = append(sections, m.styles.help.Render(help))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) statusLine(state search.State) string {
	switch {
	case state.Status == search.StatusError:
		return m.styles.errorMsg.Render(state.ErrorMessage + " (ctrl+r)")
	case m.debouncer.Pending():
		return m.styles.status.Render(m.spinner.View() + " Waiting for you to finish typing...")
	case state.Status == search.StatusLoading:
		return m.styles.status.Render(m.spinner.View() + " Searching...")
	case state.Status == search.StatusLoaded && len(state.Results.Results) == 0:
		return m.styles.status.Render(fmt.Sprintf("No books found for %q", state.Query))
	case state.Status == search.StatusLoaded:
		return m.styles.status.Render(fmt.Sprintf("%d books found", max(state.Results.TotalFound, len(state.Results.Results))))
	default:
		return m.styles.status.Render("Start typing a title")
	}
}

func (m *Model) resultsView() string {
	results := m.visibleResults()

	// Scroll so the cursor stays visible.
	start := 0
	if m.cursor >= m.listHeight {
		start = m.cursor - m.listHeight + 1
	}
	end := min(len(results), start+m.listHeight)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.itemView(results[i], i == m.cursor && m.focus == focusResults))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) itemView(b openlibrary.Book, selected bool) string {
	width := max(10, m.width-6)
	title := truncate(fmt.Sprintf("%s (%s)", output.Title(b), output.Year(b)), width)
	meta := truncate(output.Authors(b), width)

	style := m.styles.item
	if selected {
		style = m.styles.selected
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.styles.meta.Render(meta)))
}

func (m *Model) pagerView(state search.State) string {
	total := state.TotalPages()
	parts := make([]string, 0, pagination.DefaultWindowSize+2)
	if state.Page > 1 {
		parts = append(parts, m.styles.page.Render("<"))
	}
	for _, p := range pagination.Window(state.Page, total, pagination.DefaultWindowSize) {
		style := m.styles.page
		if p == state.Page {
			style = m.styles.curPage
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d", p)))
	}
	if state.Page < total {
		parts = append(parts, m.styles.page.Render(">"))
	}
	parts = append(parts, m.styles.status.Render(fmt.Sprintf("  page %d of %d", state.Page, total)))
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) detailView(b openlibrary.Book) string {
	lines := output.DetailLines(b, m.coverURL(b.CoverID))
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = m.styles.label.Render(line[0]+": ") + truncate(line[1], max(10, m.width-24))
	}
	return m.styles.detail.Render(strings.Join(rendered, "\n"))
}

// truncate collapses whitespace and shortens value to width runes.
func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 0 || len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
