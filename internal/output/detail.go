package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
)

const maxDetailSubjects = 8

// DetailLines returns the labelled fields shown for a single book.
// coverURL may be empty.
func DetailLines(b openlibrary.Book, coverURL string) [][2]string {
	lines := [][2]string{
		{"Title", Title(b)},
		{"Author", Authors(b)},
		{"First published", Year(b)},
		{"Editions", fmt.Sprintf("%d", b.EditionCount)},
	}
	if len(b.ISBNs) > 0 {
		lines = append(lines, [2]string{"ISBN", b.ISBNs[0]})
	}
	if len(b.Subjects) > 0 {
		subjects := b.Subjects
		if len(subjects) > maxDetailSubjects {
			subjects = subjects[:maxDetailSubjects]
		}
		lines = append(lines, [2]string{"Subjects", strings.Join(subjects, ", ")})
	}
	if coverURL == "" {
		coverURL = "no cover"
	}
	lines = append(lines, [2]string{"Cover", coverURL})
	if url := openlibrary.WorkURL(b.Key); url != "" {
		lines = append(lines, [2]string{"Link", url})
	}
	return lines
}

// RenderDetail writes DetailLines as aligned "label: value" text.
func RenderDetail(w io.Writer, b openlibrary.Book, coverURL string) error {
	for _, line := range DetailLines(b, coverURL) {
		if _, err := fmt.Fprintf(w, "%-16s %s\n", line[0]+":", line[1]); err != nil {
			return err
		}
	}
	return nil
}
