package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookfinder/internal/store"
)

type palette struct {
	accent  lipgloss.Color
	text    lipgloss.Color
	muted   lipgloss.Color
	errorFg lipgloss.Color
	selBg   lipgloss.Color
	selFg   lipgloss.Color
	border  lipgloss.Color
}

var palettes = map[store.Theme]palette{
	store.ThemeDark: {
		accent:  lipgloss.Color("214"),
		text:    lipgloss.Color("252"),
		muted:   lipgloss.Color("244"),
		errorFg: lipgloss.Color("203"),
		selBg:   lipgloss.Color("237"),
		selFg:   lipgloss.Color("230"),
		border:  lipgloss.Color("62"),
	},
	store.ThemeLight: {
		accent:  lipgloss.Color("25"),
		text:    lipgloss.Color("235"),
		muted:   lipgloss.Color("242"),
		errorFg: lipgloss.Color("160"),
		selBg:   lipgloss.Color("254"),
		selFg:   lipgloss.Color("16"),
		border:  lipgloss.Color("111"),
	},
}

type styles struct {
	header   lipgloss.Style
	status   lipgloss.Style
	errorMsg lipgloss.Style
	item     lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
	page     lipgloss.Style
	curPage  lipgloss.Style
	detail   lipgloss.Style
	label    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme store.Theme) styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[store.ThemeDark]
	}

	item := lipgloss.NewStyle().
		Foreground(p.text).
		PaddingLeft(2)

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			MarginBottom(1),
		status: lipgloss.NewStyle().
			Foreground(p.muted),
		errorMsg: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.errorFg),
		item: item,
		selected: item.Copy().
			Bold(true).
			Foreground(p.selFg).
			Background(p.selBg).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(p.accent).
			PaddingLeft(1),
		meta: lipgloss.NewStyle().
			Foreground(p.muted).
			Faint(true),
		page: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),
		curPage: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.selFg).
			Background(p.accent).
			Padding(0, 1),
		detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1).
			MarginTop(1),
		label: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent),
		help: lipgloss.NewStyle().
			MarginTop(1).
			Foreground(p.muted),
	}
}
