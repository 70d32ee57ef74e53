// Package pagination derives the page-number buttons shown next to results.
package pagination

// DefaultWindowSize is the number of page numbers shown at once.
const DefaultWindowSize = 5

// Window returns the inclusive range of page numbers to display, centred on
// current and shifted inwards when it would run past either edge.
// total is assumed to be at least 1.
func Window(current, total, size int) []int {
	if size <= 0 {
		size = DefaultWindowSize
	}
	if total < 1 {
		total = 1
	}

	half := size / 2
	start := max(1, current-half)
	end := min(total, current+half)

	if end-start+1 < size {
		if start == 1 {
			end = min(total, start+size-1)
		} else if end == total {
			start = max(1, end-size+1)
		}
	}

	pages := make([]int, 0, max(0, end-start+1))
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// TotalPages returns how many pages are needed for total items, never less than 1.
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	pages := (total + perPage - 1) / perPage
	return max(1, pages)
}

// Clamp bounds page to [1, total].
func Clamp(page, total int) int {
	return max(1, min(page, max(1, total)))
}
