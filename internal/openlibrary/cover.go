package openlibrary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/bookfinder/internal/errors"
)

// CoverSize selects one of the cover image sizes served by Open Library.
type CoverSize string

const (
	CoverSmall  CoverSize = "S"
	CoverMedium CoverSize = "M"
	CoverLarge  CoverSize = "L"
)

const defaultCoverMaxWidth = 1000

// ParseCoverSize accepts S, M or L in any case and falls back to M.
func ParseCoverSize(s string) CoverSize {
	switch CoverSize(strings.ToUpper(strings.TrimSpace(s))) {
	case CoverSmall:
		return CoverSmall
	case CoverLarge:
		return CoverLarge
	default:
		return CoverMedium
	}
}

// CoverURL builds the cover image URL for a cover id.
// A nil or non-positive id has no cover and yields "".
func (c *Client) CoverURL(coverID *int, size CoverSize) string {
	return coverURL(c.coversBaseURL, coverID, size)
}

// CoverURL builds a cover URL against the public covers host.
func CoverURL(coverID *int, size CoverSize) string {
	return coverURL(defaultCoversBaseURL, coverID, size)
}

func coverURL(base string, coverID *int, size CoverSize) string {
	if coverID == nil || *coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", base, *coverID, ParseCoverSize(string(size)))
}

// WorkURL returns the Open Library page for a book key such as "/works/OL45804W".
// Keys that are not paths (edition keys, title fallbacks) yield "".
func WorkURL(key string) string {
	if !strings.HasPrefix(key, "/") {
		return ""
	}
	return defaultBaseURL + key
}

// CoverDownloadOptions holds options for downloading a cover image.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// Path is where the JPEG is written
	Path string
	// MaxWidth bounds the saved image width; wider images are resized
	MaxWidth int
	// Overwrite forces re-downloading even if Path exists
	Overwrite bool
	// Progress, when set, is called with the content length and receives a copy of the body
	Progress func(total int64) io.Writer
}

// CoverDownloadResult holds the result of a cover download.
type CoverDownloadResult struct {
	Downloaded bool
	Path       string
	Width      int
	Height     int
}

// DownloadCover downloads a cover, shrinks it to MaxWidth and saves it as JPEG.
func (c *Client) DownloadCover(ctx context.Context, opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("no cover URL")
	}
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = defaultCoverMaxWidth
	}

	result := &CoverDownloadResult{Path: opts.Path}

	if info, err := os.Stat(opts.Path); err == nil && !info.IsDir() && !opts.Overwrite {
		slog.Debug("Cover already exists, skipping download", "path", opts.Path)
		return result, nil
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, errors.NewFetchError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, errors.NewFetchError(err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewFetchError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewStatusError(resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if opts.Progress != nil {
		body = io.TeeReader(resp.Body, opts.Progress(resp.ContentLength))
	}

	img, err := imaging.Decode(body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.NewParseError(err)
	}

	if img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cover directory: %w", err)
	}
	if err := imaging.Save(img, opts.Path, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", opts.Path)
	result.Downloaded = true
	result.Width = img.Bounds().Dx()
	result.Height = img.Bounds().Dy()
	return result, nil
}
