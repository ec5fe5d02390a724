package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/model"
	"github.com/theirongolddev/ccoach/internal/tui/components"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// planWeeks is the number of pages the 30-day schedule spans.
const planWeeks = (model.PlanLength + 6) / 7

func (a App) renderPlanTab(cw int) string {
	t := theme.Active
	p := a.view.Data.Plan
	if p == nil {
		return components.ContentCard("30-Day Plan", a.resourceNotice(dashboard.ResourcePlan, false), cw)
	}

	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Current weekly", Value: cli.FormatKg(p.CurrentWeeklyAvgKg)},
		{Label: "Target weekly", Value: cli.FormatKg(p.TargetWeeklyAvgKg), Color: t.Green},
		{Label: "Potential savings", Value: cli.FormatKg(p.TotalPotentialSavingsKg), Color: t.GreenBright},
		{Label: "Dates", Value: cli.FormatDate(p.StartDate), Delta: "to " + cli.FormatDate(p.EndDate)},
	}, cw))
	b.WriteString("\n")

	if notice := a.resourceNotice(dashboard.ResourcePlan, true); notice != "" {
		b.WriteString(components.ContentCard("", notice, cw))
		b.WriteString("\n")
	}

	// Week page of the daily schedule
	innerW := components.CardInnerWidth(cw)
	actionW := innerW - 4 - 14 - 8 - 10 - 8
	if actionW < 12 {
		actionW = 12
	}
	days := p.Week(a.planWeek)
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			fmt.Sprintf("%d", d.Day),
			d.FocusArea,
			d.Action,
			d.DifficultyLevel,
			cli.FormatKg(d.CarbonSavedVsTypicalKg),
		})
	}
	schedule := dimStyle.Render("No days scheduled for this week")
	if len(rows) > 0 {
		schedule = renderRows([]column{
			{Title: "Day", Width: 4, Right: true},
			{Title: "Focus", Width: 14},
			{Title: "Action", Width: actionW},
			{Title: "Level", Width: 8},
			{Title: "Saves", Width: 10, Right: true},
		}, rows)
	}
	schedule += "\n" + dimStyle.Render("[j/k] change week")
	b.WriteString(components.ContentCard(fmt.Sprintf("Week %d of %d", a.planWeek, planWeeks), schedule, cw))
	b.WriteString("\n")

	// Side-by-side lists
	bullets := func(items []string, w int) string {
		if len(items) == 0 {
			return dimStyle.Render("None")
		}
		lines := make([]string, 0, len(items))
		for _, it := range items {
			lines = append(lines, accentStyle.Render("• ")+textStyle.Render(cli.Truncate(it, w-2)))
		}
		return strings.Join(lines, "\n")
	}

	halves := components.LayoutRow(cw, 2)
	checklist := components.ContentCard("Checklist", bullets(p.ImprovementChecklist, components.CardInnerWidth(halves[0])), halves[0])
	habits := components.ContentCard("Habit Changes", bullets(p.HabitChanges, components.CardInnerWidth(halves[1])), halves[1])
	b.WriteString(components.CardRow([]string{checklist, habits}))
	b.WriteString("\n")

	if len(p.CommuteAlternatives) > 0 {
		rows := make([][]string, 0, len(p.CommuteAlternatives))
		for _, c := range p.CommuteAlternatives {
			rows = append(rows, []string{
				strings.ReplaceAll(c.Mode, "_", " "),
				cli.FormatKg(c.AnnualCarbonKg) + "/yr",
				fmt.Sprintf("%d min", c.TimePerDayMinutes),
				formatScore(c.FeasibilityScore),
			})
		}
		b.WriteString(components.ContentCard("Commute Alternatives", renderRows([]column{
			{Title: "Mode", Width: 16},
			{Title: "Annual", Width: 14, Right: true},
			{Title: "Per day", Width: 8, Right: true},
			{Title: "Feasible", Width: 8, Right: true},
		}, rows), cw))
		b.WriteString("\n")
	}

	if len(p.Recipes) > 0 {
		rows := make([][]string, 0, len(p.Recipes))
		for _, r := range p.Recipes {
			rows = append(rows, []string{
				r.Name,
				cli.FormatKg(r.CarbonFootprintKg),
				cli.FormatKg(r.SavingsVsTypicalKg),
				fmt.Sprintf("%d min", r.PrepTimeMinutes),
			})
		}
		b.WriteString(components.ContentCard("Low-carbon Recipes", renderRows([]column{
			{Title: "Recipe", Width: 28},
			{Title: "CO2e", Width: 10, Right: true},
			{Title: "Saves", Width: 10, Right: true},
			{Title: "Prep", Width: 8, Right: true},
		}, rows), cw))
		b.WriteString("\n")
	}

	if len(p.SubscriptionsToReplace) > 0 {
		rows := make([][]string, 0, len(p.SubscriptionsToReplace))
		for _, s := range p.SubscriptionsToReplace {
			rows = append(rows, []string{s.ItemName, s.Frequency, s.Alternative, cli.FormatKg(s.PotentialSavingsKg)})
		}
		b.WriteString(components.ContentCard("Subscriptions to Replace", renderRows([]column{
			{Title: "Item", Width: 20},
			{Title: "Every", Width: 10},
			{Title: "Alternative", Width: 24},
			{Title: "Saves", Width: 10, Right: true},
		}, rows), cw))
		b.WriteString("\n")
	}

	if p.Summary != "" {
		b.WriteString(components.ContentCard("Summary", textStyle.Width(innerW).Render(p.Summary), cw))
	}

	return b.String()
}

// formatScore renders a 0-10 feasibility score.
func formatScore(score *float64) string {
	if score == nil {
		return cli.Placeholder
	}
	return fmt.Sprintf("%.1f/10", *score)
}
