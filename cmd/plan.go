package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/model"

	"github.com/spf13/cobra"
)

var flagPlanWeek int

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Your 30-day reduction plan",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().IntVarP(&flagPlanWeek, "week", "w", 0, "Only show days of this week (1-5)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	if flagPlanWeek < 0 || flagPlanWeek > (model.PlanLength+6)/7 {
		return fmt.Errorf("--week must be between 1 and %d", (model.PlanLength+6)/7)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := s.load(ctx, dashboard.ResourcePlan); err != nil {
		return err
	}
	if err := s.failure(dashboard.ResourcePlan); err != nil {
		return err
	}

	p := s.dash.View().Data.Plan
	if flagJSON {
		return printJSON(p)
	}
	if p == nil {
		fmt.Println("\n  No plan available yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("30-DAY PLAN  %s → %s", cli.FormatDate(p.StartDate), cli.FormatDate(p.EndDate))))
	fmt.Println()
	fmt.Println(cli.RenderKV("Current weekly average", cli.FormatKg(p.CurrentWeeklyAvgKg)))
	fmt.Println(cli.RenderKV("Target weekly average", cli.FormatKg(p.TargetWeeklyAvgKg)))
	fmt.Println(cli.RenderKV("Potential savings", cli.FormatKg(p.TotalPotentialSavingsKg)))
	byLevel := p.SavingsByDifficulty()
	for _, lvl := range []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard} {
		if kg, ok := byLevel[lvl]; ok {
			fmt.Println(cli.RenderKV("  from "+string(lvl)+" days", cli.FormatKgValue(kg)))
		}
	}
	fmt.Println()

	days := p.DailyPlan
	title := "Daily Plan"
	if flagPlanWeek > 0 {
		days = p.Week(flagPlanWeek)
		title = fmt.Sprintf("Week %d", flagPlanWeek)
	}
	if len(days) > 0 {
		rows := make([][]string, 0, len(days))
		for _, d := range days {
			rows = append(rows, []string{
				fmt.Sprintf("%d", d.Day),
				d.FocusArea,
				cli.Truncate(d.Action, 44),
				d.DifficultyLevel,
				cli.FormatKg(d.CarbonSavedVsTypicalKg),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   title,
			Headers: []string{"Day", "Focus", "Action", "Level", "Saves"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	if len(p.ProblemAreas) > 0 {
		rows := make([][]string, 0, len(p.ProblemAreas))
		for _, c := range p.ProblemAreas {
			rows = append(rows, []string{c.Category, cli.FormatKg(c.TotalKg), cli.FormatPercent(c.Percentage)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Problem Areas",
			Headers: []string{"Category", "CO2e", "Share"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	printList("Checklist", p.ImprovementChecklist)
	printList("Habit Changes", p.HabitChanges)

	if len(p.Recipes) > 0 {
		rows := make([][]string, 0, len(p.Recipes))
		for _, r := range p.Recipes {
			rows = append(rows, []string{
				cli.Truncate(r.Name, 32),
				cli.FormatKg(r.CarbonFootprintKg),
				cli.FormatKg(r.SavingsVsTypicalKg),
				fmt.Sprintf("%d min", r.PrepTimeMinutes),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Low-carbon Recipes",
			Headers: []string{"Recipe", "CO2e", "Saves", "Prep"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	if len(p.CommuteAlternatives) > 0 {
		rows := make([][]string, 0, len(p.CommuteAlternatives))
		for _, c := range p.CommuteAlternatives {
			cost := cli.Placeholder
			if c.CostPerMonth != nil {
				cost = fmt.Sprintf("$%.0f/mo", *c.CostPerMonth)
			}
			score := cli.Placeholder
			if c.FeasibilityScore != nil {
				score = fmt.Sprintf("%.1f/10", *c.FeasibilityScore)
			}
			rows = append(rows, []string{
				strings.ReplaceAll(c.Mode, "_", " "),
				cli.FormatKg(c.AnnualCarbonKg),
				cost,
				fmt.Sprintf("%d min", c.TimePerDayMinutes),
				score,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Commute Alternatives",
			Headers: []string{"Mode", "Per year", "Cost", "Per day", "Feasible"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	if len(p.SubscriptionsToReplace) > 0 {
		rows := make([][]string, 0, len(p.SubscriptionsToReplace))
		for _, sub := range p.SubscriptionsToReplace {
			rows = append(rows, []string{
				cli.Truncate(sub.ItemName, 24),
				sub.Frequency,
				cli.Truncate(sub.Alternative, 28),
				cli.FormatKg(sub.PotentialSavingsKg),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Subscriptions to Replace",
			Headers: []string{"Item", "Every", "Alternative", "Saves"},
			Rows:    rows,
		}))
		fmt.Println()
	}

	printParagraph(p.Summary)
	return nil
}

func printList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Println(cli.RenderKV(title, ""))
	for _, it := range items {
		printParagraph("• " + it)
	}
	fmt.Println()
}
