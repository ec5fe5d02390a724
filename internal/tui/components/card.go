// Package components provides reusable TUI widgets for the ccoach dashboard.
package components

import (
	"strings"

	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// minCardText is the narrowest text area a card will shrink to.
const minCardText = 10

// Metric is one small headline card.
type Metric struct {
	Label string
	Value string
	Delta string
	Color lipgloss.Color // value color; empty means TextPrimary
}

// LayoutRow splits total into n widths that sum to total. Leading entries take the
// remainder.
func LayoutRow(total, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = total / n
		if i < total%n {
			widths[i]++
		}
	}
	return widths
}

// frame is the rounded, surface-filled box every card is drawn in. outer includes
// the border.
func frame(outer int) lipgloss.Style {
	t := theme.Active
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outer-2, minCardText)).
		Padding(0, 1)
}

// onSurface is a text style over the card background.
func onSurface(fg lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(fg).Background(theme.Active.Surface)
}

// MetricCard renders label, value and an optional delta line.
func MetricCard(m Metric, outer int) string {
	t := theme.Active
	color := m.Color
	if color == "" {
		color = t.TextPrimary
	}

	lines := []string{
		onSurface(t.TextMuted).Render(m.Label),
		onSurface(color).Bold(true).Render(m.Value),
	}
	if m.Delta != "" {
		lines = append(lines, onSurface(t.TextDim).Render(m.Delta))
	}
	return frame(outer).Render(strings.Join(lines, "\n"))
}

// MetricCardRow renders metrics side by side across total columns.
func MetricCardRow(metrics []Metric, total int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(total, len(metrics))
	cards := make([]string, len(metrics))
	for i, m := range metrics {
		cards[i] = MetricCard(m, widths[i])
	}
	return CardRow(cards)
}

// ContentCard wraps body in a card with an optional bold title line.
func ContentCard(title, body string, outer int) string {
	if title != "" {
		body = onSurface(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return frame(outer).Render(body)
}

// CardRow joins rendered cards horizontally, padding short ones with
// background-colored lines.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	height := 0
	for _, c := range cards {
		height = max(height, lipgloss.Height(c))
	}

	fill := lipgloss.NewStyle().Background(theme.Active.Background)
	out := make([]string, len(cards))
	for i, c := range cards {
		missing := height - lipgloss.Height(c)
		if missing > 0 {
			blank := fill.Render(strings.Repeat(" ", lipgloss.Width(c)))
			c += strings.Repeat("\n"+blank, missing)
		}
		out[i] = c
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// CardInnerWidth is the text width inside a card of the given outer width.
func CardInnerWidth(outer int) int {
	return max(outer-4, minCardText)
}
