package openlibrary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lepinkainen/bookfinder/internal/errors"
)

// Search fetches one page of results for a title query.
//
// An empty or whitespace-only query returns an empty page without touching the
// network. perPage is only a hint: the server may return a different number of
// documents, so callers must derive page counts from TotalFound.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (SearchPage, error) {
	q := NormalizeQuery(query)
	if q == "" {
		return SearchPage{Results: []Book{}}, nil
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	params := url.Values{}
	params.Set("title", q)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(perPage))
	params.Set("_", c.token())

	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return SearchPage{}, errors.NewFetchError(err)
	}

	slog.Debug("Searching Open Library", "query", q, "page", page, "limit", perPage)

	var response searchResponse
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return SearchPage{}, err
	}

	results := make([]Book, 0, len(response.Docs))
	for i, raw := range response.Docs {
		doc, ok := decodeDoc(raw)
		if !ok {
			slog.Debug("Skipping search result that is not an object", "index", i)
			continue
		}
		book := Normalize(doc)
		// Documents with neither a key nor a title cannot be shown or identified.
		if book.Key == "" {
			continue
		}
		results = append(results, book)
	}

	total, _ := asInt(response.NumFound)
	if total < 0 {
		total = 0
	}

	slog.Debug("Open Library search complete",
		"query", q,
		"page", page,
		"results", len(results),
		"total", total,
	)

	return SearchPage{Results: results, TotalFound: total}, nil
}

// decodeDoc decodes one search document, keeping numbers as json.Number like
// the response decoder does. Anything but a JSON object is rejected.
func decodeDoc(raw json.RawMessage) (map[string]any, bool) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var doc map[string]any
	if err := decoder.Decode(&doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

// NormalizeQuery trims the query and converts it to NFC so that composed and
// decomposed accents produce the same request.
func NormalizeQuery(query string) string {
	return norm.NFC.String(strings.TrimSpace(query))
}
