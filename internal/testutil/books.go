package testutil

import "github.com/lepinkainen/bookfinder/internal/openlibrary"

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// SampleBooks returns a small fixed result set with one fully populated
// record, one partially populated record and one bare record.
func SampleBooks() []openlibrary.Book {
	return []openlibrary.Book{
		{
			Key:              "/works/OL893415W",
			Title:            "Dune",
			AuthorNames:      []string{"Frank Herbert"},
			FirstPublishYear: IntPtr(1965),
			CoverID:          IntPtr(11481354),
			ISBNs:            []string{"9780441172719", "0441172717"},
			EditionCount:     120,
			Subjects:         []string{"Science fiction", "Arrakis"},
		},
		{
			Key:              "/works/OL46125W",
			Title:            "Foundation",
			Subtitle:         "The Foundation Trilogy",
			AuthorNames:      []string{"Isaac Asimov"},
			FirstPublishYear: IntPtr(1951),
			ISBNs:            []string{},
			EditionCount:     1,
			Subjects:         []string{},
		},
		{
			Key:          "/works/OL1W",
			Title:        "Untitled",
			AuthorNames:  []string{},
			ISBNs:        []string{},
			EditionCount: 1,
			Subjects:     []string{},
		},
	}
}

// SamplePage wraps SampleBooks in a page reporting total matches.
func SamplePage(total int) openlibrary.SearchPage {
	return openlibrary.SearchPage{Results: SampleBooks(), TotalFound: total}
}
