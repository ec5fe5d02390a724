package cmd

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/fetch"
	"github.com/theirongolddev/ccoach/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagLogLimit    int
	flagLogResource string
	flagLogSince    time.Duration
	flagLogPrune    time.Duration
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recorded fetch outcomes",
	Long:  "Every fetch cycle (resolved, failed, superseded or disposed) is recorded locally. This prints the most recent ones and a per-resource tally.",
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntVarP(&flagLogLimit, "limit", "l", 20, "Number of recent cycles to show")
	logCmd.Flags().StringVarP(&flagLogResource, "resource", "r", "", "Only show this resource")
	logCmd.Flags().DurationVar(&flagLogSince, "since", 7*24*time.Hour, "Tally window")
	logCmd.Flags().DurationVar(&flagLogPrune, "prune", 0, "Delete cycles older than this (e.g. 720h) and exit")
	rootCmd.AddCommand(logCmd)
}

type logOutput struct {
	Total   int                       `json:"total"`
	Tally   map[string]map[string]int `json:"tally"`
	Entries []store.Entry             `json:"entries"`
}

func runLog(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fl, err := store.Open(config.FetchLogPath(cfg))
	if err != nil {
		return fmt.Errorf("opening fetch log: %w", err)
	}
	defer func() { _ = fl.Close() }()

	if flagLogPrune > 0 {
		n, err := fl.Prune(time.Now().Add(-flagLogPrune))
		if err != nil {
			return fmt.Errorf("pruning fetch log: %w", err)
		}
		fmt.Printf("  Removed %s cycles older than %s\n", cli.FormatNumber(n), flagLogPrune)
		return nil
	}

	if flagLogResource != "" {
		known, err := fl.Resources()
		if err != nil {
			return err
		}
		if !slices.Contains(known, flagLogResource) {
			return fmt.Errorf("no cycles recorded for %q (known: %s)", flagLogResource, strings.Join(known, ", "))
		}
	}

	total, err := fl.Count()
	if err != nil {
		return err
	}
	tally, err := fl.OutcomeCounts(time.Now().Add(-flagLogSince))
	if err != nil {
		return err
	}
	entries, err := fl.Recent(flagLogLimit, flagLogResource)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(logOutput{Total: total, Tally: tally, Entries: entries})
	}

	if total == 0 {
		fmt.Println("\n  No fetch cycles recorded yet.")
		fmt.Printf("  Log: %s\n", config.FetchLogPath(cfg))
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("FETCH LOG"))
	fmt.Println()

	outcomes := []fetch.Outcome{fetch.OutcomeResolved, fetch.OutcomeFailed, fetch.OutcomeSuperseded, fetch.OutcomeDisposed}
	resources := make([]string, 0, len(tally))
	for r := range tally {
		resources = append(resources, r)
	}
	sort.Strings(resources)

	headers := []string{"Resource"}
	for _, o := range outcomes {
		headers = append(headers, string(o))
	}
	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		row := []string{r}
		for _, o := range outcomes {
			row = append(row, cli.FormatNumber(int64(tally[r][string(o)])))
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("Last %s", formatWindow(flagLogSince)),
			Headers: headers,
			Rows:    rows,
		}))
		fmt.Println()
	}

	now := time.Now()
	recent := make([][]string, 0, len(entries))
	for _, e := range entries {
		recent = append(recent, []string{
			e.Resource,
			fmt.Sprintf("%d", e.Cycle),
			e.Outcome,
			e.Duration.Round(time.Millisecond).String(),
			cli.FormatAge(e.StartedAt, now),
			cli.Truncate(e.Reason, 36),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Recent Cycles",
		Headers: []string{"Resource", "Cycle", "Outcome", "Took", "Started", "Reason"},
		Rows:    recent,
	}))
	fmt.Printf("\n  %s cycles recorded in %s\n", cli.FormatNumber(int64(total)), config.FetchLogPath(cfg))
	return nil
}

func formatWindow(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return d.String()
}
