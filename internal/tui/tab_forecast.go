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

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	f := a.view.Data.Forecast
	if f == nil {
		return components.ContentCard("Forecast", a.resourceNotice(dashboard.ResourceForecast, false), cw)
	}

	var b strings.Builder

	peakVal, peakDelta := cli.Placeholder, ""
	if peak, ok := f.Peak(); ok {
		peakVal = cli.FormatKg(peak.PredictedKg)
		peakDelta = cli.FormatDate(peak.Date)
	}
	avg := cli.Placeholder
	if n := len(f.Forecasts); n > 0 {
		avg = cli.FormatKgValue(f.ProjectedMonthlyTotal / float64(n))
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: fmt.Sprintf("Projected (%dd)", a.dash.ForecastDays()), Value: cli.FormatKgValue(f.ProjectedMonthlyTotal)},
		{Label: "Daily average", Value: avg},
		{Label: "Peak day", Value: peakVal, Delta: peakDelta},
		{Label: "Risk", Value: strings.ToUpper(string(f.Risk())), Color: components.RiskColor(f.Risk())},
	}, cw))
	b.WriteString("\n")

	if notice := a.resourceNotice(dashboard.ResourceForecast, true); notice != "" {
		b.WriteString(components.ContentCard("", notice, cw))
		b.WriteString("\n")
	}

	if len(f.Forecasts) > 0 {
		series := f.Series()
		bars := make([]components.Bar, len(f.Forecasts))
		for i, d := range f.Forecasts {
			bars[i] = components.Bar{Value: series[i], High: d.ConfidenceInterval[1], Label: shortDate(d.Date)}
		}
		// Mark the coach's daily budget when it is known.
		limit, title := 0.0, "Predicted Daily CO2e (kg)"
		if c := a.view.Data.Coach; c != nil && c.DailyBudget != nil {
			limit = *c.DailyBudget
			title += "  ╌ daily budget"
		}
		chartH := 10
		if a.isCompactLayout() {
			chartH = 7
		}
		b.WriteString(components.ContentCard(
			title,
			components.BarChart(bars, limit, t.Blue, components.CardInnerWidth(cw), chartH),
			cw,
		))
		b.WriteString("\n")
	}

	// Day-by-day table, first two weeks
	rows := make([][]string, 0, 14)
	for i, d := range f.Forecasts {
		if i >= 14 {
			break
		}
		ci := fmt.Sprintf("%s – %s", cli.FormatKgValue(d.ConfidenceInterval[0]), cli.FormatKgValue(d.ConfidenceInterval[1]))
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatKg(d.PredictedKg),
			ci,
			model.Trend(d.Trend).Arrow() + " " + d.Trend,
		})
	}
	if len(rows) > 0 {
		b.WriteString(components.ContentCard("Next Days", renderRows([]column{
			{Title: "Date", Width: 11},
			{Title: "Predicted", Width: 10, Right: true},
			{Title: "Confidence", Width: 22, Right: true},
			{Title: "Trend", Width: 12},
		}, rows), cw))
		b.WriteString("\n")
	}

	if f.Summary != "" {
		body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).
			Width(components.CardInnerWidth(cw)).Render(f.Summary)
		b.WriteString(components.ContentCard("Outlook", body, cw))
	}

	return b.String()
}

// shortDate turns "2026-03-07" into "03/07" for chart axes.
func shortDate(iso string) string {
	if len(iso) == 10 && iso[4] == '-' && iso[7] == '-' {
		return iso[5:7] + "/" + iso[8:]
	}
	return iso
}
