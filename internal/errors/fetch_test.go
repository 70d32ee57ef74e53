package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFetchErrorStatus(t *testing.T) {
	err := NewStatusError(http.StatusServiceUnavailable)

	if err.Error() != "fetch failed: status 503" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "fetch failed: status 503")
	}

	if !IsFetchError(err) {
		t.Fatalf("IsFetchError returned false for FetchError")
	}

	if IsParseError(err) {
		t.Fatalf("IsParseError returned true for FetchError")
	}
}

func TestFetchErrorWrapsTransportError(t *testing.T) {
	cause := stdErrors.New("connection reset by peer")
	err := NewFetchError(cause)

	if !stdErrors.Is(err, cause) {
		t.Fatalf("FetchError does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("search: %w", err)
	if !IsFetchError(wrapped) {
		t.Fatalf("IsFetchError returned false for wrapped FetchError")
	}
}

func TestParseError(t *testing.T) {
	cause := stdErrors.New("unexpected EOF")
	err := NewParseError(cause)

	if err.Error() != "parse failed: unexpected EOF" {
		t.Fatalf("Error message = %q, want %q", err.Error(), "parse failed: unexpected EOF")
	}

	if !IsParseError(stdErrors.Join(err)) {
		t.Fatalf("IsParseError returned false for joined ParseError")
	}

	if IsFetchError(err) {
		t.Fatalf("IsFetchError returned true for ParseError")
	}
}
