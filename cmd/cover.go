package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/openlibrary"
)

// CoverCmd downloads a cover image by its Open Library cover id
type CoverCmd struct {
	CoverID   int    `arg:"" name:"cover-id" help:"Numeric cover id, as shown in search output"`
	Size      string `short:"s" help:"Cover size: S, M or L (default from config)"`
	Out       string `short:"o" help:"Output file (defaults to cover-<id>.jpg)"`
	MaxWidth  int    `help:"Resize covers wider than this many pixels (default from config)"`
	Overwrite bool   `help:"Replace an existing file"`
	Quiet     bool   `short:"q" help:"Do not show download progress"`
}

func (c *CoverCmd) Run() error {
	if c.CoverID <= 0 {
		return fmt.Errorf("cover id must be positive, got %d", c.CoverID)
	}

	cfg := config.Load()
	size := c.Size
	if size == "" {
		size = cfg.CoverSize
	}
	switch strings.ToUpper(size) {
	case "S", "M", "L":
	default:
		return fmt.Errorf("cover size must be S, M or L, got %q", size)
	}
	maxWidth := c.MaxWidth
	if maxWidth <= 0 {
		maxWidth = cfg.CoverMaxWidth
	}
	out := c.Out
	if out == "" {
		out = fmt.Sprintf("cover-%d.jpg", c.CoverID)
	}

	client := newClient(cfg)
	id := c.CoverID
	opts := openlibrary.CoverDownloadOptions{
		URL:       client.CoverURL(&id, openlibrary.ParseCoverSize(size)),
		Path:      out,
		MaxWidth:  maxWidth,
		Overwrite: c.Overwrite,
	}
	if !c.Quiet {
		opts.Progress = func(total int64) io.Writer {
			return progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(stderr),
				progressbar.OptionSetDescription("Downloading cover"),
				progressbar.OptionShowBytes(true),
				progressbar.OptionClearOnFinish(),
			)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	result, err := client.DownloadCover(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to download cover %d: %w", c.CoverID, err)
	}

	if !result.Downloaded {
		_, err = fmt.Fprintf(stdout, "%s already exists, use --overwrite to replace it\n", result.Path)
		return err
	}
	_, err = fmt.Fprintf(stdout, "Saved %s (%dx%d)\n", result.Path, result.Width, result.Height)
	return err
}
