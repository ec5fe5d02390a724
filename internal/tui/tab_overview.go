package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/tui/components"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	data := a.view.Data
	var b strings.Builder

	// Row 1: headline metrics, one per resource
	total, daily := cli.Placeholder, cli.Placeholder
	if in := data.Insights; in != nil {
		total = cli.FormatKg(in.TotalFootprint)
		daily = cli.FormatKg(in.AverageDailyFootprint)
	}
	projected := cli.Placeholder
	riskDelta := ""
	if f := data.Forecast; f != nil {
		projected = cli.FormatKgValue(f.ProjectedMonthlyTotal)
		riskDelta = string(f.Risk()) + " risk"
	}
	budget, budgetDelta := cli.Placeholder, ""
	budgetColor := lipgloss.Color("")
	if c := data.Coach; c != nil {
		budget = cli.FormatKg(c.WeeklyBudget)
		p := c.Progress()
		if p.Percent != nil {
			budgetDelta = fmt.Sprintf("%s used · %s", cli.FormatPercent(p.Percent), p.Status)
			budgetColor = components.StatusColor(p.Status)
		}
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Footprint " + periodLabel(a.dash.Period()), Value: total},
		{Label: "Daily average", Value: daily},
		{Label: "Projected (forecast)", Value: projected, Delta: riskDelta},
		{Label: "Weekly budget", Value: budget, Delta: budgetDelta, Color: budgetColor},
	}, cw))
	b.WriteString("\n")

	// Row 2: category breakdown + top sources
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	catBody := a.resourceNotice(dashboard.ResourceInsights, data.Insights != nil)
	srcBody := catBody
	if in := data.Insights; in != nil {
		bars := make([]components.HBar, 0, len(in.CategoryBreakdown))
		for _, c := range in.CategoryBreakdown {
			v := 0.0
			if c.TotalKg != nil {
				v = *c.TotalKg
			}
			bars = append(bars, components.HBar{
				Label: c.Category,
				Value: v,
				Note:  cli.FormatKg(c.TotalKg) + " " + cli.FormatPercent(c.Percentage),
			})
		}
		if len(bars) > 0 {
			catBody = components.HBars(bars, t.Accent, components.CardInnerWidth(halves[0]))
		} else {
			catBody = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No categories reported")
		}

		innerW := components.CardInnerWidth(halves[1])
		itemW := innerW - 12 - 6 - 4
		if itemW < 8 {
			itemW = 8
		}
		rows := make([][]string, 0, len(in.Top5Sources))
		for _, s := range in.Top5Sources {
			rows = append(rows, []string{s.Item, cli.FormatKg(s.TotalKg), fmt.Sprintf("%d×", s.Frequency)})
		}
		srcBody = renderRows([]column{
			{Title: "Item", Width: itemW},
			{Title: "CO2e", Width: 12, Right: true},
			{Title: "Times", Width: 6, Right: true},
		}, rows)
	}

	catCard := components.ContentCard("By Category", catBody, halves[0])
	srcCard := components.ContentCard("Top Sources", srcBody, halves[1])
	if a.isCompactLayout() {
		b.WriteString(catCard)
		b.WriteString("\n")
		b.WriteString(srcCard)
	} else {
		b.WriteString(components.CardRow([]string{catCard, srcCard}))
	}
	b.WriteString("\n")

	// Row 3: recurring patterns and summary
	if in := data.Insights; in != nil {
		if subs := in.SubscriptionLike(); len(subs) > 0 {
			rows := make([][]string, 0, len(subs))
			for _, p := range subs {
				rows = append(rows, []string{p.Item, fmt.Sprintf("every %dd", p.FrequencyDays), cli.FormatKg(p.AnnualImpactKg) + "/yr"})
			}
			b.WriteString(components.ContentCard("Subscription-like Purchases", renderRows([]column{
				{Title: "Item", Width: 28},
				{Title: "Cadence", Width: 12},
				{Title: "Impact", Width: 14, Right: true},
			}, rows), cw))
			b.WriteString("\n")
		}
		if in.Summary != "" {
			body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
				Width(components.CardInnerWidth(cw)).Render(in.Summary)
			b.WriteString(components.ContentCard("Summary", body, cw))
			b.WriteString("\n")
		}
	}

	// Failures across every resource
	if len(a.errs) > 0 {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		lines := make([]string, 0, len(a.errs))
		for _, e := range a.errs {
			lines = append(lines, errStyle.Render(fmt.Sprintf("%-9s %s", e.Resource, e.Reason)))
		}
		b.WriteString(components.ContentCard("Errors", strings.Join(lines, "\n"), cw))
	}

	return b.String()
}
