// Package openlibrary provides a client for the Open Library search API.
package openlibrary

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/bookfinder/internal/ratelimit"
)

const (
	defaultBaseURL       = "https://openlibrary.org"
	defaultCoversBaseURL = "https://covers.openlibrary.org"
	defaultPerPage       = 20
	defaultTimeout       = 10 * time.Second
	defaultRatePerSecond = 2
	defaultRateBurst     = 2
	userAgent            = "bookfinder/1.0 (+https://github.com/lepinkainen/bookfinder)"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an Open Library API client.
type Client struct {
	baseURL       string
	coversBaseURL string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	token         func() string
}

// NewClient creates a new Open Library client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:       defaultBaseURL,
		coversBaseURL: defaultCoversBaseURL,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		rateLimiter:   ratelimit.New("OpenLibrary", defaultRatePerSecond, defaultRateBurst),
		token:         uuid.NewString,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout replaces the HTTP client with a plain one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBaseURL sets a custom base URL for the search API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithCoversBaseURL sets a custom base URL for cover images.
func WithCoversBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.coversBaseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// WithTokenFunc sets the generator for the cache-busting request token.
func WithTokenFunc(fn func() string) Option {
	return func(client *Client) {
		if fn != nil {
			client.token = fn
		}
	}
}

// BaseURL returns the search API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}
