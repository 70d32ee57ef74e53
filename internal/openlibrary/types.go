package openlibrary

import "encoding/json"

// Book is the canonical search result record.
type Book struct {
	Key              string   `json:"key" yaml:"key" toml:"key"`
	Title            string   `json:"title" yaml:"title" toml:"title"`
	Subtitle         string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty" toml:"subtitle,omitempty"`
	AuthorNames      []string `json:"author_names" yaml:"author_names" toml:"author_names"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty" yaml:"first_publish_year,omitempty" toml:"first_publish_year,omitempty"`
	CoverID          *int     `json:"cover_id,omitempty" yaml:"cover_id,omitempty" toml:"cover_id,omitempty"`
	ISBNs            []string `json:"isbns" yaml:"isbns" toml:"isbns"`
	EditionCount     int      `json:"edition_count" yaml:"edition_count" toml:"edition_count"`
	Subjects         []string `json:"subjects" yaml:"subjects" toml:"subjects"`
}

// HasCover reports whether the book has a cover image.
func (b Book) HasCover() bool {
	return b.CoverID != nil && *b.CoverID > 0
}

// Year returns the first publish year, or 0 when unknown.
func (b Book) Year() int {
	if b.FirstPublishYear == nil {
		return 0
	}
	return *b.FirstPublishYear
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results    []Book `json:"results" yaml:"results" toml:"results"`
	TotalFound int    `json:"total_found" yaml:"total_found" toml:"total_found"`
}

// searchResponse matches the /search.json response. Both fields are optional.
// Docs are kept raw so one malformed entry cannot fail the whole page.
type searchResponse struct {
	Docs     []json.RawMessage `json:"docs"`
	NumFound any               `json:"numFound"`
}
