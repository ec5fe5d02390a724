package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/ccoach/internal/model"
	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StatusColor maps a budget status to a theme color.
func StatusColor(s model.BudgetStatus) lipgloss.Color {
	t := theme.Active
	switch s {
	case model.StatusOnTrack:
		return t.Green
	case model.StatusModerate:
		return t.Yellow
	case model.StatusCaution:
		return t.Orange
	case model.StatusOver:
		return t.Red
	default:
		return t.TextDim
	}
}

// RiskColor maps a forecast risk level to a theme color.
func RiskColor(r model.RiskLevel) lipgloss.Color {
	t := theme.Active
	switch r {
	case model.RiskLow:
		return t.Green
	case model.RiskMedium:
		return t.Yellow
	case model.RiskHigh:
		return t.Red
	default:
		return t.TextDim
	}
}

// RiskBadge renders the risk level as a colored uppercase pill.
func RiskBadge(r model.RiskLevel) string {
	label := strings.ToUpper(string(r))
	if label == "" {
		label = "UNKNOWN"
	}
	return lipgloss.NewStyle().
		Foreground(theme.Active.Background).
		Background(RiskColor(r)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}

// BudgetBar renders weekly budget progress. The bar fill is clamped to the track
// while the printed percentage is the unclamped value.
func BudgetBar(p model.BudgetProgress, width int) string {
	t := theme.Active
	color := StatusColor(p.Status)

	spaceStyle := lipgloss.NewStyle().Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if p.Percent == nil {
		return dimStyle.Render(strings.Repeat("░", width)) + spaceStyle.Render(" ") + dimStyle.Render("—")
	}

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	statusStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	return bar.ViewAs(p.BarFraction) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", *p.Percent)) +
		spaceStyle.Render("  ") +
		statusStyle.Render(p.Status.String())
}

// ProgressBar renders a plain fraction bar with percentage, used while loading.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}
