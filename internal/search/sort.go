package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lepinkainen/bookfinder/internal/openlibrary"
)

// Order selects how a result page is displayed.
type Order string

const (
	// OrderRelevance keeps the order returned by the search API.
	OrderRelevance Order = "relevance"
	// OrderNewest puts the most recently first-published works first.
	OrderNewest Order = "newest"
	// OrderOldest puts the earliest first-published works first.
	OrderOldest Order = "oldest"
)

var orders = []Order{OrderRelevance, OrderNewest, OrderOldest}

// ParseOrder accepts an order name, case-insensitively. An empty string
// means relevance.
func ParseOrder(s string) (Order, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return OrderRelevance, nil
	}
	for _, o := range orders {
		if string(o) == s {
			return o, nil
		}
	}
	return OrderRelevance, fmt.Errorf("unknown sort order %q", s)
}

// Next cycles relevance -> newest -> oldest -> relevance.
func (o Order) Next() Order {
	i := slices.Index(orders, o)
	if i < 0 {
		return OrderRelevance
	}
	return orders[(i+1)%len(orders)]
}

// Sort returns a copy of books in the requested order. Books without a
// publish year always come last, and ties keep their API order.
func Sort(books []openlibrary.Book, order Order) []openlibrary.Book {
	sorted := slices.Clone(books)
	if sorted == nil {
		sorted = []openlibrary.Book{}
	}

	switch order {
	case OrderNewest:
		slices.SortStableFunc(sorted, func(a, b openlibrary.Book) int {
			return compareYears(a, b, true)
		})
	case OrderOldest:
		slices.SortStableFunc(sorted, func(a, b openlibrary.Book) int {
			return compareYears(a, b, false)
		})
	}
	return sorted
}

func compareYears(a, b openlibrary.Book, newestFirst bool) int {
	ay, by := a.Year(), b.Year()
	aok, bok := a.FirstPublishYear != nil, b.FirstPublishYear != nil
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	case newestFirst:
		return by - ay
	default:
		return ay - by
	}
}
