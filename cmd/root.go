package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/bookfinder/internal/config"
	"github.com/lepinkainen/bookfinder/internal/openlibrary"
	"github.com/lepinkainen/bookfinder/internal/ratelimit"
	"github.com/lepinkainen/bookfinder/internal/repl"
	"github.com/lepinkainen/bookfinder/internal/store"
	"github.com/lepinkainen/bookfinder/internal/tui"
)

var (
	runTUI  = tui.Run
	runREPL = repl.Run

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// CLI represents the complete command structure for the bookfinder application
type CLI struct {
	// Global flags
	Debug   bool          `help:"Enable debug logging"`
	BaseURL string        `help:"Open Library base URL" placeholder:"URL"`
	PerPage int           `help:"Results requested per page (default from config)"`
	Timeout time.Duration `help:"Timeout for each request (default from config)"`
	DBFile  string        `name:"db-file" help:"Path to the preferences SQLite database (default from config)"`

	TUI     TUICmd     `cmd:"" name:"tui" default:"withargs" help:"Interactive search screen (default)"`
	Search  SearchCmd  `cmd:"" help:"Search once and print the results"`
	REPL    REPLCmd    `cmd:"" name:"repl" help:"Line-oriented search shell"`
	Cover   CoverCmd   `cmd:"" help:"Download a cover image"`
	History HistoryCmd `cmd:"" help:"Show or clear recent searches"`
	Theme   ThemeCmd   `cmd:"" help:"Show or change the UI theme"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(stderr, slog.LevelInfo)
	initConfig()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bookfinder"),
		kong.Description("Search Open Library for books by title."),
		kong.UsageOnError(),
	)

	if cli.Debug {
		initLogging(stderr, slog.LevelDebug)
	}
	updateGlobalConfig(&cli)

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	config.SetDefaults()

	viper.SetEnvPrefix("BOOKFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
			return
		}
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
}

func updateGlobalConfig(cli *CLI) {
	if cli.BaseURL != "" {
		viper.Set(config.KeyBaseURL, cli.BaseURL)
	}
	if cli.PerPage > 0 {
		viper.Set(config.KeyPerPage, cli.PerPage)
	}
	if cli.Timeout > 0 {
		viper.Set(config.KeyTimeout, cli.Timeout.String())
	}
	if cli.DBFile != "" {
		viper.Set(config.KeyStoreDBFile, cli.DBFile)
	}
	if cli.Debug {
		viper.Set("debug", true)
	}
}

func initLogging(w io.Writer, level slog.Level) {
	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func logLevel() slog.Level {
	if viper.GetBool("debug") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// logToFile sends logs to path for the lifetime of a full-screen UI.
func logToFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	previous := slog.Default()
	initLogging(f, logLevel())
	return func() {
		slog.SetDefault(previous)
		_ = f.Close()
	}, nil
}

func newClient(cfg config.Config) *openlibrary.Client {
	return openlibrary.NewClient(
		openlibrary.WithBaseURL(cfg.BaseURL),
		openlibrary.WithCoversBaseURL(cfg.CoversURL),
		openlibrary.WithTimeout(cfg.Timeout),
		openlibrary.WithRateLimiter(newLimiter(cfg.RateLimit)),
	)
}

// newLimiter treats a non-positive rate as unlimited.
func newLimiter(perSecond float64) *ratelimit.Limiter {
	if perSecond <= 0 {
		return ratelimit.Unlimited("openlibrary")
	}
	return ratelimit.New("openlibrary", perSecond, max(1, int(perSecond)))
}

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	defaultTheme, err := store.ParseTheme(cfg.Theme)
	if err != nil {
		slog.Warn("Invalid ui.theme in config, using dark", "value", cfg.Theme)
		defaultTheme = store.ThemeDark
	}
	return store.Open(ctx, cfg.StoreDBFile,
		store.WithHistorySize(cfg.HistorySize),
		store.WithDefaultTheme(defaultTheme),
	)
}
