// Package cmd implements the ccoach CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/ccoach/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	url := config.GetAPIURL(cfg)
	if strings.TrimSpace(os.Getenv(config.EnvAPIURL)) != "" {
		url += "  (from $" + config.EnvAPIURL + ")"
	}
	fmt.Printf("    Base URL: %s\n", url)
	token := config.GetToken(cfg)
	switch {
	case token == "":
		fmt.Println("    Token:    not configured")
	case strings.TrimSpace(os.Getenv(config.EnvToken)) != "":
		fmt.Printf("    Token:    %s  (from $%s)\n", config.MaskToken(token), config.EnvToken)
	default:
		fmt.Printf("    Token:    %s\n", config.MaskToken(token))
	}
	if token != "" {
		fmt.Printf("    Expires:  %s\n", describeExpiry(token, time.Now()))
	}
	fmt.Println()

	fmt.Println("  [Dashboard]")
	fmt.Printf("    Period:           %s\n", config.Period(cfg))
	fmt.Printf("    Forecast days:    %d\n", cfg.Dashboard.ForecastDays)
	fmt.Printf("    Refresh interval: %ds\n", cfg.Dashboard.RefreshIntervalSec)
	fmt.Printf("    Auto refresh:     %v\n", cfg.Dashboard.AutoRefresh)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:      %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Printf("    Fetch log:     %s\n", config.FetchLogPath(cfg))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `ccoach setup` to reconfigure.")
	return nil
}

// describeExpiry renders a token's exp claim for display. Opaque tokens are not JWTs.
func describeExpiry(token string, now time.Time) string {
	exp, err := config.TokenExpiry(token)
	switch {
	case errors.Is(err, config.ErrNoExpiry):
		return "never"
	case err != nil:
		return "unknown (not a JWT)"
	case exp.Before(now):
		return exp.Local().Format(time.RFC3339) + "  (expired)"
	default:
		return exp.Local().Format(time.RFC3339) + "  (in " + formatUntil(exp.Sub(now)) + ")"
	}
}

func formatUntil(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
