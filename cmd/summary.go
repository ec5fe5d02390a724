package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "One-screen overview of every resource",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

type summaryOutput struct {
	dashboard.View
	Errors []dashboard.ResourceError `json:"errors"`
}

func runSummary(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := s.load(ctx); err != nil {
		return err
	}

	view := s.dash.View()
	errs := s.dash.Errors()
	if flagJSON {
		return printJSON(summaryOutput{View: view, Errors: errs})
	}

	if len(errs) == len(dashboard.Resources) {
		printErrors(errs)
		return errors.New(view.Error)
	}

	data := view.Data
	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CARBON FOOTPRINT  This %s", s.dash.Period())))
	fmt.Println()

	rows := [][]string{}
	if in := data.Insights; in != nil {
		rows = append(rows,
			[]string{"Footprint", cli.FormatKg(in.TotalFootprint)},
			[]string{"Daily average", cli.FormatKg(in.AverageDailyFootprint)},
		)
		if top, ok := in.TopCategory(); ok {
			rows = append(rows, []string{"Top category", fmt.Sprintf("%s (%s)", top.Category, cli.FormatPercent(top.Percentage))})
		}
		rows = append(rows, []string{"---"})
	}
	if f := data.Forecast; f != nil {
		rows = append(rows,
			[]string{fmt.Sprintf("Projected (%dd)", s.dash.ForecastDays()), cli.FormatKgValue(f.ProjectedMonthlyTotal)},
			[]string{"Risk", strings.ToUpper(string(f.Risk()))},
			[]string{"---"},
		)
	}
	if c := data.Coach; c != nil {
		p := c.Progress()
		rows = append(rows,
			[]string{"Weekly budget", cli.FormatKg(c.WeeklyBudget)},
			[]string{"Daily budget", cli.FormatKg(c.DailyBudget)},
			[]string{"Budget used", fmt.Sprintf("%s (%s)", cli.FormatPercent(p.Percent), p.Status)},
			[]string{"---"},
		)
	}
	if p := data.Plan; p != nil {
		rows = append(rows,
			[]string{"Plan target", cli.FormatKg(p.TargetWeeklyAvgKg) + "/week"},
			[]string{"Plan savings", cli.FormatKg(p.TotalPotentialSavingsKg)},
		)
	}
	if n := len(rows); n > 0 && rows[n-1][0] == "---" {
		rows = rows[:n-1]
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if c := data.Coach; c != nil {
		fmt.Println()
		fmt.Println("  " + cli.RenderBudgetBar(c.Progress(), 30))
	}

	printErrors(errs)
	return nil
}
