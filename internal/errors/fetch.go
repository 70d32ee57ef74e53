package errors

import (
	"errors"
	"fmt"
)

// FetchError represents a transport failure or a non-success status from the search API.
type FetchError struct {
	// StatusCode is the HTTP status returned by the server, 0 when the request never completed.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed: status %d", e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch failed: %v", e.Err)
	}
	return "fetch failed"
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError wrapping a transport error.
func NewFetchError(err error) *FetchError {
	return &FetchError{Err: err}
}

// NewStatusError creates a FetchError for a non-success HTTP status.
func NewStatusError(status int) *FetchError {
	return &FetchError{StatusCode: status}
}

// IsFetchError reports whether err is a FetchError (even when wrapped).
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
