// Package config loads and saves the ccoach TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
)

// Environment variables that override the config file.
const (
	EnvToken  = "CCOACH_TOKEN"
	EnvAPIURL = "CCOACH_API_URL"
)

// Config holds all ccoach configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// APIConfig holds carbon service settings.
type APIConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Token   string `toml:"token,omitempty"`
}

// DashboardConfig holds resource query and refresh settings.
type DashboardConfig struct {
	Period             string `toml:"period"`
	ForecastDays       int    `toml:"forecast_days"`
	RefreshIntervalSec int    `toml:"refresh_interval_sec"`
	AutoRefresh        bool   `toml:"auto_refresh"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
	LogPath      string `toml:"log_path,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: carbonapi.DefaultBaseURL,
		},
		Dashboard: DashboardConfig{
			Period:             string(carbonapi.PeriodMonth),
			ForecastDays:       carbonapi.DefaultForecastDays,
			RefreshIntervalSec: 300,
			AutoRefresh:        false,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  60,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "moss",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccoach")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ccoach")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory, used for the fetch log.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "ccoach")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "ccoach")
}

// FetchLogPath returns the path of the fetch outcome log.
func FetchLogPath(cfg Config) string {
	if cfg.Daemon.LogPath != "" {
		return cfg.Daemon.LogPath
	}
	return filepath.Join(DataDir(), "fetchlog.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetAPIURL returns the service URL from env var or config, in that order.
func GetAPIURL(cfg Config) string {
	if u := strings.TrimSpace(os.Getenv(EnvAPIURL)); u != "" {
		return u
	}
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL
	}
	return carbonapi.DefaultBaseURL
}

// GetToken returns the bearer token from env var or config, in that order.
func GetToken(cfg Config) string {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok
	}
	return strings.TrimSpace(cfg.API.Token)
}

// TokenSource returns a credential source that re-reads the environment on every request,
// so a token rotated by whatever owns the session is picked up without a restart.
func TokenSource(cfg Config) carbonapi.CredentialSource {
	return carbonapi.CredentialFunc(func() (string, bool) {
		tok := GetToken(cfg)
		return tok, tok != ""
	})
}

// Period returns the configured insights period, falling back to month when invalid.
func Period(cfg Config) carbonapi.Period {
	p, err := carbonapi.ParsePeriod(cfg.Dashboard.Period)
	if err != nil {
		return carbonapi.PeriodMonth
	}
	return p
}

// NewClient builds a carbon API client from the config.
func NewClient(cfg Config, opts ...carbonapi.ClientOption) *carbonapi.Client {
	return carbonapi.NewClient(GetAPIURL(cfg), TokenSource(cfg), opts...)
}
