package tui

import (
	"strings"

	"github.com/theirongolddev/ccoach/internal/cli"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/tui/components"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCoachTab(cw int) string {
	t := theme.Active
	c := a.view.Data.Coach
	if c == nil {
		return components.ContentCard("Coach", a.resourceNotice(dashboard.ResourceCoach, false), cw)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Weekly budget", Value: cli.FormatKg(c.WeeklyBudget)},
		{Label: "Daily budget", Value: cli.FormatKg(c.DailyBudget)},
		{Label: "Your weekly average", Value: cli.FormatKg(c.HistoricalWeeklyAvg)},
	}, cw))
	b.WriteString("\n")

	if notice := a.resourceNotice(dashboard.ResourceCoach, true); notice != "" {
		b.WriteString(components.ContentCard("", notice, cw))
		b.WriteString("\n")
	}

	innerW := components.CardInnerWidth(cw)
	barW := innerW - 24
	if barW < 10 {
		barW = 10
	}

	var week strings.Builder
	if c.WeekStartDate != "" || c.WeekEndDate != "" {
		week.WriteString(labelStyle.Render("Week  "))
		week.WriteString(valueStyle.Render(cli.FormatDate(c.WeekStartDate) + " → " + cli.FormatDate(c.WeekEndDate)))
		week.WriteString("\n\n")
	}
	week.WriteString(components.BudgetBar(c.Progress(), barW))
	b.WriteString(components.ContentCard("Budget Progress", week.String(), cw))
	b.WriteString("\n")

	if len(c.TradeoffSuggestions) > 0 {
		lines := make([]string, 0, len(c.TradeoffSuggestions))
		for _, s := range c.TradeoffSuggestions {
			wrapped := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
				Width(innerW - 2).Render(s)
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, accentStyle.Render("• "), wrapped))
		}
		b.WriteString(components.ContentCard("Trade-off Suggestions", strings.Join(lines, "\n"), cw))
	}

	return b.String()
}
