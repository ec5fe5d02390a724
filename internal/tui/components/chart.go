package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/ccoach/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// eighths are the partial-cell glyphs used for bar tops, indexed by eighths filled.
var eighths = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[max(0, min(idx, len(sparkBlocks)-1))])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// Bar is one column of a BarChart.
type Bar struct {
	Value float64
	High  float64 // upper confidence bound; drawn as a whisker when above Value
	Label string
}

// yScale maps kilograms onto chart rows with round tick values.
type yScale struct {
	ceiling     float64
	step        float64
	rows        int
	rowsPerTick int
}

func newYScale(peak float64, height int) yScale {
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	maxTicks := max(2, height/2)
	for int(math.Ceil(peak/step)) > maxTicks {
		step *= 2
	}
	ceiling := math.Ceil(peak/step) * step
	ticks := max(1, int(math.Round(ceiling/step)))
	perTick := max(2, height/ticks)
	return yScale{ceiling: ceiling, step: step, rows: perTick * ticks, rowsPerTick: perTick}
}

// bounds returns the value range covered by row (1 is the bottom row).
func (s yScale) bounds(row int) (lo, hi float64) {
	return s.ceiling * float64(row-1) / float64(s.rows), s.ceiling * float64(row) / float64(s.rows)
}

// label returns the tick label for row, or "" between ticks.
func (s yScale) label(row int) string {
	if row%s.rowsPerTick != 0 {
		return ""
	}
	return formatChartLabel(s.step * float64(row/s.rowsPerTick))
}

// fitBars samples bars down until each gets at least two columns, and picks the bar width.
func fitBars(bars []Bar, chartW int) ([]Bar, int) {
	n := len(bars)
	if n == 1 {
		return bars, min(chartW, 6)
	}
	barW := (chartW - (n - 1)) / n
	if barW >= 2 {
		return bars, min(barW, 6)
	}
	keep := max(2, (chartW+1)/3)
	out := make([]Bar, keep)
	for i := range out {
		out[i] = bars[i*(n-1)/(keep-1)]
	}
	return out, 2
}

// BarChart renders predicted daily values as vertical bars. When limit is positive a dashed
// line marks it and bars above it switch to the warning color.
func BarChart(bars []Bar, limit float64, color lipgloss.Color, width, height int) string {
	if len(bars) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		values := make([]float64, len(bars))
		for i, b := range bars {
			values[i] = b.Value
		}
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := limit
	for _, b := range bars {
		peak = max(peak, b.Value, b.High)
	}
	scale := newYScale(peak, height)

	yLabelW := max(4, len(formatChartLabel(scale.ceiling))+1)
	chartW := max(5, width-yLabelW-1)
	bars, barW := fitBars(bars, chartW)
	gap := 1
	if len(bars) == 1 {
		gap = 0
	}
	axisLen := len(bars)*barW + (len(bars)-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	whiskerStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	limitStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := scale.rows; row >= 1; row-- {
		lo, hi := scale.bounds(row)
		onLimit := limit > 0 && limit > lo && limit <= hi

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, scale.label(row))))
		b.WriteString(axisStyle.Render("│"))

		for i, bar := range bars {
			if i > 0 && gap > 0 {
				if onLimit {
					b.WriteString(limitStyle.Render(strings.Repeat("╌", gap)))
				} else {
					b.WriteString(space.Render(strings.Repeat(" ", gap)))
				}
			}
			style := okStyle
			if limit > 0 && bar.Value > limit {
				style = overStyle
			}
			switch {
			case bar.Value >= hi:
				b.WriteString(style.Render(strings.Repeat("█", barW)))
			case bar.Value > lo:
				idx := int((bar.Value - lo) / (hi - lo) * 8)
				b.WriteString(style.Render(strings.Repeat(string(eighths[max(1, min(idx, 8))]), barW)))
			case bar.High > bar.Value && bar.High > lo:
				b.WriteString(whiskerStyle.Render(centered("│", barW)))
			case onLimit:
				b.WriteString(limitStyle.Render(strings.Repeat("╌", barW)))
			default:
				b.WriteString(space.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if labels := xLabels(bars, barW, gap, axisLen); labels != "" {
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(labels))
	}
	return b.String()
}

// xLabels lays out bar labels under the axis without overlaps. The last label is always
// shown when it fits.
func xLabels(bars []Bar, barW, gap, axisLen int) string {
	n := len(bars)
	if n == 0 || bars[0].Label == "" {
		return ""
	}
	buf := []byte(strings.Repeat(" ", axisLen))
	step := max(1, (n*8)/(axisLen+1))

	lastEnd := -1
	place := func(i int, force bool) {
		lbl := bars[i].Label
		pos := i * (barW + gap)
		if pos+len(lbl) > axisLen {
			if !force {
				return
			}
			pos = axisLen - len(lbl)
		}
		if pos < 0 || pos <= lastEnd {
			return
		}
		copy(buf[pos:], lbl)
		lastEnd = pos + len(lbl)
	}
	for i := 0; i < n-1; i += step {
		place(i, false)
	}
	place(n-1, true)
	return strings.TrimRight(string(buf), " ")
}

func centered(s string, w int) string {
	left := (w - 1) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-left-1)
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders an axis value in kilograms; sub-unit ticks keep decimals.
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0ft", v/1e3)
		}
		return fmt.Sprintf("%.1ft", v/1e3)
	case v >= 10 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	case v >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// HBar is one row of a horizontal bar list.
type HBar struct {
	Label string
	Value float64
	Note  string // printed after the bar, e.g. a percentage
}

// HBars renders labelled horizontal bars scaled to the largest value.
func HBars(rows []HBar, color lipgloss.Color, width int) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	noteW := 0
	peak := 0.0
	for _, r := range rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
		noteW = max(noteW, lipgloss.Width(r.Note))
		peak = max(peak, r.Value)
	}
	labelW = min(labelW, width/3)
	if peak <= 0 {
		peak = 1
	}

	barMax := width - labelW - noteW - 2
	if barMax < 4 {
		barMax = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		n := int(math.Round(r.Value / peak * float64(barMax)))
		n = max(0, min(n, barMax))
		if n == 0 && r.Value > 0 {
			n = 1
		}
		label := r.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:max(0, labelW-1)]) + "…"
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s", labelW, label))+
			space.Render(" ")+
			barStyle.Render(strings.Repeat("█", n))+
			space.Render(strings.Repeat(" ", barMax-n+1))+
			noteStyle.Render(r.Note))
	}
	return strings.Join(lines, "\n")
}
