package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/theirongolddev/ccoach/internal/model"
	"github.com/theirongolddev/ccoach/internal/tui/theme"
)

// styleSet holds the lipgloss styles CLI output is drawn with.
type styleSet struct {
	title, header, value, muted, dim lipgloss.Style
	good, moderate, warn, err        lipgloss.Style
	border                           lipgloss.Color
}

func newStyles(t theme.Theme) styleSet {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styleSet{
		title:    fg(t.TextPrimary).Bold(true).Align(lipgloss.Center),
		header:   fg(t.Accent).Bold(true),
		value:    fg(t.TextPrimary),
		muted:    fg(t.TextMuted),
		dim:      fg(t.TextDim),
		good:     fg(t.Green),
		moderate: fg(t.Yellow),
		warn:     fg(t.Orange),
		err:      fg(t.Red),
		border:   t.Border,
	}
}

var styles = newStyles(theme.Moss)

// UseTheme switches CLI output to the named palette.
func UseTheme(name string) {
	styles = newStyles(theme.ByName(name))
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.border).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(styles.title.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding only "---"
// becomes a rule. The first column is left-aligned; the rest hold quantities.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 {
		numCols = len(t.Rows[0])
	}
	widths := columnWidths(t, numCols)

	rules := make(map[int]bool)
	rows := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rules[i] = true
			row = make([]string, numCols)
			for c := range row {
				row[c] = strings.Repeat("─", widths[c])
			}
		}
		rows = append(rows, padRow(row, numCols))
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.dim).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.header.Padding(0, 1)
			}
			style := styles.value
			if rules[row] {
				style = styles.dim
			}
			style = style.Padding(0, 1).Width(widths[col] + 2)
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	if len(t.Headers) > 0 {
		tbl = tbl.Headers(t.Headers...)
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(styles.header.Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.String())
	b.WriteString("\n")
	return b.String()
}

// columnWidths returns t.Widths when set, otherwise the widest cell per column.
func columnWidths(t Table, numCols int) []int {
	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row[:n]
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// RenderBudgetBar renders progress toward the weekly budget. The bar is clamped to full;
// the label shows the unclamped percentage.
func RenderBudgetBar(p model.BudgetProgress, width int) string {
	if p.Percent == nil {
		return styles.muted.Render(strings.Repeat("░", width) + " " + Placeholder)
	}

	filled := int(p.BarFraction * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s %s",
		StatusStyle(p.Status).Render(bar),
		styles.value.Render(FormatPercent(p.Percent)),
		StatusStyle(p.Status).Render(p.Status.String()),
	)
}

// StatusStyle picks the color for a budget status.
func StatusStyle(s model.BudgetStatus) lipgloss.Style {
	switch s {
	case model.StatusOnTrack:
		return styles.good
	case model.StatusModerate:
		return styles.moderate
	case model.StatusCaution:
		return styles.warn
	case model.StatusOver:
		return styles.err
	default:
		return styles.muted
	}
}

// RiskStyle picks the color for a forecast risk level.
func RiskStyle(r model.RiskLevel) lipgloss.Style {
	switch r {
	case model.RiskLow:
		return styles.good
	case model.RiskMedium:
		return styles.warn
	case model.RiskHigh:
		return styles.err
	default:
		return styles.muted
	}
}

// RenderKV renders an aligned "label  value" line.
func RenderKV(label, value string) string {
	return fmt.Sprintf("  %s %s", styles.muted.Render(fmt.Sprintf("%-22s", label)), styles.value.Render(value))
}

// RenderError renders a failure line for a resource.
func RenderError(resource, reason string) string {
	return fmt.Sprintf("  %s %s", styles.err.Render("✗ "+resource), styles.muted.Render(reason))
}

// RenderWarning renders a muted warning line.
func RenderWarning(msg string) string {
	return "  " + styles.warn.Render(msg)
}

// RenderSparkline draws values as a row of block characters scaled to the largest.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")
	peak := slices.Max(values)
	if peak <= 0 {
		peak = 1
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		out[i] = blocks[min(max(idx, 0), len(blocks)-1)]
	}
	return string(out)
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %-14s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	if barLen > maxWidth {
		barLen = maxWidth
	}
	return fmt.Sprintf("  %-14s %s %s", Truncate(label, 14),
		styles.good.Render(strings.Repeat("█", barLen)), styles.muted.Render(FormatKgValue(value)))
}
