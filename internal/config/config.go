// Package config resolves bookfinder settings from viper.
package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyBaseURL       = "openlibrary.baseurl"
	KeyCoversURL     = "openlibrary.coversurl"
	KeyPerPage       = "search.perpage"
	KeyDebounce      = "search.debounce"
	KeyTimeout       = "search.timeout"
	KeyRateLimit     = "search.ratelimit"
	KeyStoreDBFile   = "store.dbfile"
	KeyTheme         = "ui.theme"
	KeyHistorySize   = "history.size"
	KeyLogFile       = "log.file"
	KeyCoverSize     = "cover.size"
	KeyCoverMaxWidth = "cover.maxwidth"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL       string
	CoversURL     string
	PerPage       int
	Debounce      time.Duration
	Timeout       time.Duration
	RateLimit     float64
	StoreDBFile   string
	Theme         string
	HistorySize   int
	LogFile       string
	CoverSize     string
	CoverMaxWidth int
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault(KeyBaseURL, "https://openlibrary.org")
	viper.SetDefault(KeyCoversURL, "https://covers.openlibrary.org")
	viper.SetDefault(KeyPerPage, 20)
	viper.SetDefault(KeyDebounce, "600ms")
	viper.SetDefault(KeyTimeout, "10s")
	viper.SetDefault(KeyRateLimit, 2.0)
	viper.SetDefault(KeyStoreDBFile, "./bookfinder.db")
	viper.SetDefault(KeyTheme, "dark")
	viper.SetDefault(KeyHistorySize, 8)
	viper.SetDefault(KeyLogFile, "./bookfinder.log")
	viper.SetDefault(KeyCoverSize, "L")
	viper.SetDefault(KeyCoverMaxWidth, 1000)
}

// Load reads the current viper state. Out of range values fall back to
// their defaults with a warning.
func Load() Config {
	cfg := Config{
		BaseURL:       viper.GetString(KeyBaseURL),
		CoversURL:     viper.GetString(KeyCoversURL),
		PerPage:       viper.GetInt(KeyPerPage),
		Debounce:      viper.GetDuration(KeyDebounce),
		Timeout:       viper.GetDuration(KeyTimeout),
		RateLimit:     viper.GetFloat64(KeyRateLimit),
		StoreDBFile:   viper.GetString(KeyStoreDBFile),
		Theme:         viper.GetString(KeyTheme),
		HistorySize:   viper.GetInt(KeyHistorySize),
		LogFile:       viper.GetString(KeyLogFile),
		CoverSize:     viper.GetString(KeyCoverSize),
		CoverMaxWidth: viper.GetInt(KeyCoverMaxWidth),
	}

	if cfg.PerPage < 1 {
		slog.Warn("Invalid search.perpage, using default", "value", cfg.PerPage)
		cfg.PerPage = 20
	}
	if cfg.Debounce <= 0 {
		slog.Warn("Invalid search.debounce, using default", "value", cfg.Debounce)
		cfg.Debounce = 600 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		slog.Warn("Invalid search.timeout, using default", "value", cfg.Timeout)
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HistorySize < 1 {
		cfg.HistorySize = 8
	}
	if cfg.CoverMaxWidth < 1 {
		cfg.CoverMaxWidth = 1000
	}

	return cfg
}
