package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/daemon"
	"github.com/theirongolddev/ccoach/internal/simulate"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a background dashboard daemon with HTTP/SSE endpoints",
	Long: `Keeps the dashboard fresh in the background and serves it over HTTP:

  /healthz        liveness
  /v1/status      refresh counters and a compact snapshot
  /v1/dashboard   the combined view
  /v1/errors      every current resource failure
  /v1/events      recent change events
  /v1/stream      change events as server-sent events
  /v1/simulate    POST a what-if simulation
  /metrics        Prometheus metrics`,
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Refresh interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(config.DataDir(), "ccoachd.pid"), "PID file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.DataDir(), "ccoachd.log"), "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

// daemonConfig merges daemon flags over the config file.
func daemonConfig(cfg config.Config) daemon.Config {
	dcfg := daemon.Config{
		BaseURL:      config.GetAPIURL(cfg),
		Period:       config.Period(cfg),
		ForecastDays: cfg.Dashboard.ForecastDays,
		Interval:     time.Duration(cfg.Daemon.IntervalSec) * time.Second,
		Addr:         cfg.Daemon.Addr,
		EventsBuffer: cfg.Daemon.EventsBuffer,
	}
	if flagDaemonAddr != "" {
		dcfg.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		dcfg.Interval = flagDaemonInterval
	}
	if flagDaemonEventsBuffer > 0 {
		dcfg.EventsBuffer = flagDaemonEventsBuffer
	}
	if dcfg.Addr == "" {
		dcfg.Addr = config.DefaultConfig().Daemon.Addr
	}
	return dcfg
}

func startDaemonDetached() error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	if err := files.ensureFree(); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := daemonConfig(cfg).Addr

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	args := append(withoutDetach(os.Args[1:]), "--child")

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagDaemonPIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground() error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	if err := files.ensureFree(); err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	dcfg := daemonConfig(s.cfg)

	if err := files.claim(daemonRuntimeState{
		PID:       os.Getpid(),
		Addr:      dcfg.Addr,
		StartedAt: time.Now(),
		BaseURL:   dcfg.BaseURL,
	}); err != nil {
		return err
	}
	defer files.release()

	inv := simulate.NewInvoker(s.client)
	defer inv.Close()
	svc := daemon.New(dcfg, s.dash, inv)

	fmt.Printf("  ccoach daemon listening on http://%s\n", dcfg.Addr)
	fmt.Printf("  Refreshing every %s from %s\n", dcfg.Interval, dcfg.BaseURL)
	fmt.Printf("  Stop with: ccoach daemon stop --pid-file %s\n", flagDaemonPIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	pid, err := files.readPID()
	if err != nil {
		fmt.Printf("  Daemon: not running (pid file not found)\n")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := flagDaemonAddr
	if st, err := files.readState(); err == nil && st.Addr != "" && addr == "" {
		addr = st.Addr
	}
	if addr == "" {
		cfg, _ := loadConfig()
		addr = daemonConfig(cfg).Addr
	}

	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := probeDaemon(ctx, addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}
	if flagJSON {
		return printJSON(st)
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last refresh: pending\n")
	} else {
		fmt.Printf("  Last refresh: %s (%s)\n", st.LastPollAt.Local().Format(time.RFC3339), cli.FormatAge(st.LastPollAt, time.Now()))
	}
	fmt.Printf("  Refresh count: %d\n", st.PollCount)
	fmt.Printf("  Service: %s (period %s, %dd forecast)\n", st.BaseURL, st.Period, st.ForecastDays)
	fmt.Printf("  Footprint: %s\n", cli.FormatKg(st.Summary.TotalFootprintKg))
	fmt.Printf("  Projected: %s\n", cli.FormatKg(st.Summary.ProjectedMonthlyKg))
	fmt.Printf("  Budget used: %s\n", cli.FormatPercent(st.Summary.ProgressPercent))
	fmt.Printf("  Subscribers: %d, events: %d\n", st.SubscriberCount, st.EventCount)
	for _, r := range st.Resources {
		line := fmt.Sprintf("    %-9s %s", r.Resource, r.Status)
		if r.Reason != "" {
			line += "  " + r.Reason
		}
		fmt.Println(line)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

// probeDaemon reads /v1/status from a running daemon.
func probeDaemon(ctx context.Context, addr string) (daemon.Status, error) {
	var st daemon.Status
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	files := daemonFiles{pidPath: flagDaemonPIDFile}
	pid, err := files.readPID()
	if err != nil {
		return errors.New("daemon is not running")
	}
	if err := stopProcess(pid, 8*time.Second); err != nil {
		return err
	}
	files.release()
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}

func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}
