package cmd

import (
	"context"
	"encoding/json"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/fetch"
	"github.com/theirongolddev/ccoach/internal/metrics"
	"github.com/theirongolddev/ccoach/internal/store"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	flagPeriod  string
	flagDays    int
	flagJSON    bool
	flagQuiet   bool
	flagTimeout time.Duration
	flagNoLog   bool
)

var rootCmd = &cobra.Command{
	Use:     "ccoach",
	Short:   "Carbon footprint coach",
	Long:    "Track your carbon footprint: insights, forecasts, a weekly budget, a 30-day plan and what-if simulations.",
	Version: version,
	RunE:    runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	klogFlags := goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.PersistentFlags().StringVar(&flagPeriod, "period", "", "Insights period: day, week or month (default from config)")
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Forecast horizon in days, 1-90 (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Give up on the service after this long")
	rootCmd.PersistentFlags().BoolVar(&flagNoLog, "no-log", false, "Don't record fetch outcomes in the local log")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	cli.UseTheme(cfg.Appearance.Theme)
	if flagPeriod != "" {
		p, err := carbonapi.ParsePeriod(flagPeriod)
		if err != nil {
			return cfg, err
		}
		cfg.Dashboard.Period = string(p)
	}
	if flagDays != 0 {
		cfg.Dashboard.ForecastDays = flagDays
	}
	return cfg, nil
}

// session bundles what every data command needs: config, client, dashboard and fetch log.
type session struct {
	cfg    config.Config
	client *carbonapi.Client
	dash   *dashboard.Dashboard
	log    *store.FetchLog

	// pending holds the done channels of every cycle load started.
	pending []<-chan struct{}
}

// closeDrainTimeout bounds how long close waits for canceled cycles to report.
const closeDrainTimeout = 2 * time.Second

// openSession builds a dashboard over the configured service. Callers must close it.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	if !flagNoLog {
		s.log = openFetchLog(cfg)
	}
	s.client = newClient(cfg)
	s.dash = dashboard.New(s.client, dashboard.Options{
		Period:       config.Period(cfg),
		ForecastDays: cfg.Dashboard.ForecastDays,
	}, fetch.WithObserver(fetchObservers(s.log)))

	if config.GetToken(cfg) == "" && !flagQuiet && !flagJSON {
		fmt.Fprintln(os.Stderr, cli.RenderWarning("No access token configured. Run `ccoach setup` or set $"+config.EnvToken+"."))
	}
	return s, nil
}

// close disposes the dashboard. Disposed cycles still report to the fetch log, so it
// stays open until they have settled or closeDrainTimeout passes.
func (s *session) close() {
	s.dash.Close()
	if s.log == nil {
		return
	}
	if !waitAll(s.pending, closeDrainTimeout) {
		klog.V(1).InfoS("Closing fetch log with cycles still in flight", "timeout", closeDrainTimeout)
	}
	_ = s.log.Close()
}

// waitAll waits for every channel to close and reports whether they all did in time.
func waitAll(chans []<-chan struct{}, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for _, c := range chans {
		select {
		case <-c:
		case <-deadline.C:
			return false
		}
	}
	return true
}

// load fetches the given resources, or all of them when none are named, and waits for
// every cycle to settle.
func (s *session) load(ctx context.Context, resources ...dashboard.Resource) error {
	if len(resources) == 0 {
		resources = dashboard.Resources
	}
	progress("  Fetching %s from %s...\n", describeResources(resources), s.client.BaseURL())

	pending := make([]<-chan struct{}, 0, len(resources))
	for _, r := range resources {
		done, err := s.dash.RefreshResource(ctx, r)
		if err != nil {
			return err
		}
		pending = append(pending, done)
		s.pending = append(s.pending, done)
	}
	for i, done := range pending {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for %s: %w", resources[i], ctx.Err())
		}
	}
	return nil
}

// failure returns the recorded failure of r as an error, or nil.
func (s *session) failure(r dashboard.Resource) error {
	for _, e := range s.dash.Errors() {
		if e.Resource == r {
			return fmt.Errorf("fetching %s: %s", r, e.Reason)
		}
	}
	return nil
}

func newClient(cfg config.Config) *carbonapi.Client {
	return config.NewClient(cfg, carbonapi.WithUserAgent("ccoach/"+version))
}

// openFetchLog opens the fetch outcome log. It returns nil when the log is unavailable.
func openFetchLog(cfg config.Config) *store.FetchLog {
	fl, err := store.Open(config.FetchLogPath(cfg))
	if err != nil {
		klog.V(1).InfoS("Fetch log unavailable", "path", config.FetchLogPath(cfg), "err", err)
		return nil
	}
	return fl
}

// fetchObservers returns the observers installed on every loader.
func fetchObservers(fl *store.FetchLog) fetch.Observer {
	obs := fetch.Observers{metrics.FetchObserver{}}
	if fl != nil {
		obs = append(obs, fl)
	}
	return obs
}

// commandContext is canceled on interrupt or after --timeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, flagTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func progress(format string, args ...any) {
	if flagQuiet || flagJSON {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func describeResources(rs []dashboard.Resource) string {
	if len(rs) == len(dashboard.Resources) {
		return "dashboard"
	}
	out := ""
	for i, r := range rs {
		if i > 0 {
			out += ", "
		}
		out += string(r)
	}
	return out
}

// printErrors lists every resource failure under the output.
func printErrors(errs []dashboard.ResourceError) {
	if len(errs) == 0 {
		return
	}
	fmt.Println()
	for _, e := range errs {
		fmt.Println(cli.RenderError(string(e.Resource), e.Reason))
	}
}
