package cmd

import (
	"fmt"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"

	"github.com/spf13/cobra"
)

var coachCmd = &cobra.Command{
	Use:   "coach",
	Short: "This week's carbon budget and progress",
	RunE:  runCoach,
}

func init() {
	rootCmd.AddCommand(coachCmd)
}

func runCoach(_ *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := s.load(ctx, dashboard.ResourceCoach); err != nil {
		return err
	}
	if err := s.failure(dashboard.ResourceCoach); err != nil {
		return err
	}

	c := s.dash.View().Data.Coach
	if flagJSON {
		return printJSON(c)
	}
	if c == nil {
		fmt.Println("\n  No budget available yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("WEEKLY BUDGET"))
	fmt.Println()
	if c.WeekStartDate != "" || c.WeekEndDate != "" {
		fmt.Println(cli.RenderKV("Week", cli.FormatDate(c.WeekStartDate)+" → "+cli.FormatDate(c.WeekEndDate)))
	}
	fmt.Println(cli.RenderKV("Weekly budget", cli.FormatKg(c.WeeklyBudget)))
	fmt.Println(cli.RenderKV("Daily budget", cli.FormatKg(c.DailyBudget)))
	fmt.Println(cli.RenderKV("Your weekly average", cli.FormatKg(c.HistoricalWeeklyAvg)))
	fmt.Println()
	fmt.Println("  " + cli.RenderBudgetBar(c.Progress(), 40))
	fmt.Println()

	if len(c.TradeoffSuggestions) > 0 {
		fmt.Println(cli.RenderKV("Trade-offs", ""))
		for _, t := range c.TradeoffSuggestions {
			printParagraph("• " + t)
		}
	}
	return nil
}
