package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	if tok := config.GetToken(cfg); tok != "" {
		fmt.Printf("\n  Current token: %s (leave blank to keep it)\n", config.MaskToken(tok))
	}

	updated, err := tui.RunSetup(cfg)
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println("  Setup canceled, nothing saved.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("setup form: %w", err)
	}

	if err := config.Save(updated); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `ccoach setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
