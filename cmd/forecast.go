package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/model"

	"github.com/spf13/cobra"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Predicted daily footprint with confidence intervals",
	RunE:  runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := s.load(ctx, dashboard.ResourceForecast); err != nil {
		return err
	}
	if err := s.failure(dashboard.ResourceForecast); err != nil {
		return err
	}

	f := s.dash.View().Data.Forecast
	if flagJSON {
		return printJSON(f)
	}
	if f == nil {
		fmt.Println("\n  No forecast available yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  Next %dd", s.dash.ForecastDays())))
	fmt.Println()
	fmt.Println(cli.RenderKV("Projected total", cli.FormatKgValue(f.ProjectedMonthlyTotal)))
	if n := len(f.Forecasts); n > 0 {
		fmt.Println(cli.RenderKV("Daily average", cli.FormatKgValue(f.ProjectedMonthlyTotal/float64(n))))
	}
	if peak, ok := f.Peak(); ok {
		fmt.Println(cli.RenderKV("Peak day", fmt.Sprintf("%s on %s", cli.FormatKg(peak.PredictedKg), cli.FormatDate(peak.Date))))
	}
	risk := f.Risk()
	fmt.Printf("  %-22s %s\n", "Risk", cli.RiskStyle(risk).Render(strings.ToUpper(string(risk))))
	if spark := cli.RenderSparkline(f.Series()); spark != "" {
		fmt.Println(cli.RenderKV("Trend", spark))
	}
	fmt.Println()

	if len(f.Forecasts) > 0 {
		rows := make([][]string, 0, len(f.Forecasts))
		for _, d := range f.Forecasts {
			rows = append(rows, []string{
				cli.FormatDate(d.Date),
				cli.FormatKg(d.PredictedKg),
				cli.FormatKgValue(d.ConfidenceInterval[0]),
				cli.FormatKgValue(d.ConfidenceInterval[1]),
				model.Trend(d.Trend).Arrow() + " " + d.Trend,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Date", "Predicted", "Low", "High", "Trend"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	printParagraph(f.Summary)
	return nil
}
