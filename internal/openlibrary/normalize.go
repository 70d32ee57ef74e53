package openlibrary

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize converts one raw search document into a Book.
// It never fails: missing or mistyped fields fall back to empty values.
func Normalize(doc map[string]any) Book {
	title, _ := getString(doc, "title")
	title = strings.TrimSpace(title)

	book := Book{
		Title:       title,
		AuthorNames: getStrings(doc, "author_name"),
		ISBNs:       getStrings(doc, "isbn"),
		Subjects:    getStrings(doc, "subject"),
	}

	if subtitle, ok := getString(doc, "subtitle"); ok {
		book.Subtitle = strings.TrimSpace(subtitle)
	}

	if year, ok := getInt(doc, "first_publish_year"); ok {
		book.FirstPublishYear = &year
	}

	if cover, ok := getInt(doc, "cover_i"); ok && cover > 0 {
		book.CoverID = &cover
	}

	if count, ok := getInt(doc, "edition_count"); ok && count > 0 {
		book.EditionCount = count
	}

	book.Key = firstNonEmpty(
		stringValue(doc, "key"),
		stringValue(doc, "cover_edition_key"),
		firstString(getStrings(doc, "edition_key")),
		title,
	)

	return book
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstString(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func stringValue(m map[string]any, key string) string {
	s, _ := getString(m, key)
	return s
}

func getString(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	return asString(m[key])
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	default:
		return "", false
	}
}

func getInt(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	return asInt(m[key])
}

func asInt(v any) (int, bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
		if f, err := val.Float64(); err == nil {
			return asInt(f)
		}
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val < math.MinInt || val >= math.MaxInt {
			return 0, false
		}
		return int(val), true
	case int:
		return val, true
	case int64:
		return int(val), true
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// getStrings returns the string elements of an array field. A lone string is
// treated as a one-element array and non-string elements are skipped, except
// numbers which are formatted.
func getStrings(m map[string]any, key string) []string {
	out := []string{}
	if m == nil {
		return out
	}

	switch val := m[key].(type) {
	case []any:
		for _, item := range val {
			if s, ok := asString(item); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		if strings.TrimSpace(val) != "" {
			out = append(out, val)
		}
	}
	return out
}
