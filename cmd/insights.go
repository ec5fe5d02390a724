package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Footprint by category, top sources and recurring purchases",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := s.load(ctx, dashboard.ResourceInsights); err != nil {
		return err
	}
	if err := s.failure(dashboard.ResourceInsights); err != nil {
		return err
	}

	in := s.dash.View().Data.Insights
	if flagJSON {
		return printJSON(in)
	}
	if in == nil {
		fmt.Println("\n  No insights available yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("INSIGHTS  This %s", s.dash.Period())))
	fmt.Println()
	fmt.Println(cli.RenderKV("Total footprint", cli.FormatKg(in.TotalFootprint)))
	fmt.Println(cli.RenderKV("Daily average", cli.FormatKg(in.AverageDailyFootprint)))
	fmt.Println()

	if len(in.CategoryBreakdown) > 0 {
		maxKg := 0.0
		rows := make([][]string, 0, len(in.CategoryBreakdown))
		for _, c := range in.CategoryBreakdown {
			if c.TotalKg != nil && *c.TotalKg > maxKg {
				maxKg = *c.TotalKg
			}
			rows = append(rows, []string{
				c.Category,
				cli.FormatKg(c.TotalKg),
				cli.FormatPercent(c.Percentage),
				cli.FormatNumber(int64(c.ItemCount)),
				cli.FormatKg(c.AvgPerItem),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By Category",
			Headers: []string{"Category", "CO2e", "Share", "Items", "Per item"},
			Rows:    rows,
		}))
		fmt.Println()
		for _, c := range in.CategoryBreakdown {
			if c.TotalKg != nil {
				fmt.Println(cli.RenderHorizontalBar(c.Category, *c.TotalKg, maxKg, 30))
			}
		}
		fmt.Println()
	}

	if len(in.Top5Sources) > 0 {
		rows := make([][]string, 0, len(in.Top5Sources))
		for _, src := range in.Top5Sources {
			rows = append(rows, []string{
				cli.Truncate(src.Item, 32),
				cli.FormatKg(src.TotalKg),
				cli.FormatNumber(int64(src.Frequency)),
				cli.FormatKg(src.AvgPerPurchaseKg),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top Sources",
			Headers: []string{"Item", "CO2e", "Times", "Per purchase"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	if len(in.RecurringPatterns) > 0 {
		rows := make([][]string, 0, len(in.RecurringPatterns))
		for _, p := range in.RecurringPatterns {
			sub := ""
			if p.IsSubscriptionLike {
				sub = "yes"
			}
			rows = append(rows, []string{
				cli.Truncate(p.Item, 32),
				fmt.Sprintf("every %dd", p.FrequencyDays),
				cli.FormatKg(p.AnnualImpactKg),
				sub,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Recurring Purchases",
			Headers: []string{"Item", "Cadence", "Per year", "Subscription"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	printParagraph(in.Summary)
	return nil
}

// printParagraph word-wraps service prose under the tables.
func printParagraph(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	fmt.Println(lipgloss.NewStyle().Width(72).PaddingLeft(2).Render(text))
}
