package openlibrary

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/bookfinder/internal/errors"
)

// getJSON performs a single GET and decodes the body into target.
// There is no retry: transport failures and non-2xx statuses become a
// FetchError, undecodable bodies a ParseError.
func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewFetchError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewFetchError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Debug("Open Library returned error status",
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(body)),
		)
		if resp.StatusCode == http.StatusTooManyRequests {
			return &errors.FetchError{
				StatusCode: resp.StatusCode,
				Err:        errors.NewRateLimitError("Open Library rate limit exceeded", retryAfter(resp.Header.Get("Retry-After"))),
			}
		}
		return errors.NewStatusError(resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return errors.NewParseError(err)
	}
	return nil
}

// retryAfter parses the delay-seconds form of Retry-After. HTTP dates are ignored.
func retryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
