// Package output renders search results for non-interactive use.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/search"
)

// Format is an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatJSON, FormatYAML, FormatTOML}

// ParseFormat accepts a format name, case-insensitively. "yml" is accepted
// as yaml.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Document is one rendered result page.
type Document struct {
	Query      string             `json:"query" yaml:"query" toml:"query"`
	Page       int                `json:"page" yaml:"page" toml:"page"`
	PerPage    int                `json:"per_page" yaml:"per_page" toml:"per_page"`
	TotalPages int                `json:"total_pages" yaml:"total_pages" toml:"total_pages"`
	TotalFound int                `json:"total_found" yaml:"total_found" toml:"total_found"`
	Results    []openlibrary.Book `json:"results" yaml:"results" toml:"results"`
}

// NewDocument builds a Document from a controller snapshot, with results
// shown in the given order.
func NewDocument(state search.State, order search.Order) Document {
	return Document{
		Query:      state.Query,
		Page:       state.Page,
		PerPage:    state.PerPage,
		TotalPages: state.TotalPages(),
		TotalFound: state.Results.TotalFound,
		Results:    search.Sort(state.Results.Results, order),
	}
}

// Render writes doc to w in the requested format.
func Render(w io.Writer, doc Document, format Format) error {
	if doc.Results == nil {
		doc.Results = []openlibrary.Book{}
	}

	switch format {
	case FormatTable, "":
		return renderTable(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("failed to encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, doc Document) error {
	if len(doc.Results) == 0 {
		_, err := fmt.Fprintf(w, "No results for %q\n", doc.Query)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: 48},
		{Name: "Author", WidthMax: 32},
	})

	t.AppendHeader(table.Row{"#", "Title", "Author", "Year", "Editions"})
	offset := (max(1, doc.Page) - 1) * max(1, doc.PerPage)
	for i, b := range doc.Results {
		t.AppendRow(table.Row{offset + i + 1, Title(b), Authors(b), Year(b), b.EditionCount})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("Page %d of %d", doc.Page, doc.TotalPages), "", "", fmt.Sprintf("%d found", doc.TotalFound)})

	t.Render()
	return nil
}

// Title joins title and subtitle.
func Title(b openlibrary.Book) string {
	if b.Subtitle == "" {
		return b.Title
	}
	return b.Title + ": " + b.Subtitle
}

// Authors joins author names, or returns "Unknown author".
func Authors(b openlibrary.Book) string {
	if len(b.AuthorNames) == 0 {
		return "Unknown author"
	}
	return strings.Join(b.AuthorNames, ", ")
}

// Year formats the first publish year, or "n/a" when unknown.
func Year(b openlibrary.Book) string {
	if b.FirstPublishYear == nil {
		return "n/a"
	}
	return strconv.Itoa(*b.FirstPublishYear)
}
