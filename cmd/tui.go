package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/store"
	"github.com/theirongolddev/ccoach/internal/tui"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Logging to stderr would tear the alt screen.
	closeLog := redirectLogs()
	defer closeLog()

	var fl *store.FetchLog
	if !flagNoLog {
		fl = openFetchLog(cfg)
	}
	if fl != nil {
		defer func() { _ = fl.Close() }()
	}

	app := tui.NewApp(tui.Options{
		Config:    cfg,
		NewAPI:    func(c config.Config) tui.API { return newClient(c) },
		Observer:  fetchObservers(fl),
		NeedSetup: !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	if m, ok := final.(tui.App); ok {
		m.Close()
	} else {
		app.Close()
	}
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// redirectLogs sends klog output to a file under the data dir for the life of the TUI.
func redirectLogs() func() {
	klog.LogToStderr(false)

	path := filepath.Join(config.DataDir(), "tui.log")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		klog.SetOutput(io.Discard)
		return func() {}
	}
	//nolint:gosec // log path is under the user's data dir
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		klog.SetOutput(io.Discard)
		return func() {}
	}
	klog.SetOutput(f)
	return func() {
		klog.Flush()
		_ = f.Close()
	}
}
