package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/theirongolddev/ccoach/internal/model"
)

func TestBudgetBarPrintsUnclampedPercent(t *testing.T) {
	pct := 140.0
	out := BudgetBar(model.BudgetProgress{Percent: &pct, BarFraction: 1, Status: model.StatusOver}, 20)
	if !strings.Contains(out, "140%") {
		t.Errorf("bar should print the raw percentage, got %q", out)
	}
	if !strings.Contains(out, "Over budget") {
		t.Errorf("bar should print the status label, got %q", out)
	}
}

func TestBudgetBarAbsentPercent(t *testing.T) {
	out := BudgetBar(model.BudgetProgress{}, 10)
	if !strings.Contains(out, "—") {
		t.Errorf("absent progress should render a placeholder, got %q", out)
	}
}

func TestHBarsScalesToPeak(t *testing.T) {
	out := HBars([]HBar{
		{Label: "transport", Value: 30, Note: "60%"},
		{Label: "food", Value: 15, Note: "30%"},
		{Label: "other", Value: 0, Note: "0%"},
	}, "#ffffff", 40)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	full := strings.Count(lines[0], "█")
	half := strings.Count(lines[1], "█")
	if full == 0 || half == 0 || half >= full {
		t.Errorf("bar lengths full=%d half=%d", full, half)
	}
	if strings.Count(lines[2], "█") != 0 {
		t.Error("zero value should render no bar")
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w > 40 {
			t.Errorf("line %d width %d exceeds 40", i, w)
		}
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	forecastDown := func(tab Tab) bool { return tab.Resource == "forecast" }
	for _, alert := range []func(Tab) bool{nil, forecastDown} {
		for active := range Tabs {
			bar := RenderTabBar(active, 0, alert)
			want := 0
			for i, tab := range Tabs {
				want += TabVisualWidth(tab, i == active, alert != nil && alert(tab))
			}
			want += len(Tabs) - 1
			if got := lipgloss.Width(bar); got != want {
				t.Errorf("active=%d alert=%v: rendered width %d, want %d", active, alert != nil, got, want)
			}
		}
	}
}

func TestTabBarMarksFailedResource(t *testing.T) {
	bar := RenderTabBar(0, 0, func(tab Tab) bool { return tab.Resource == "coach" })
	if strings.Count(bar, tabAlert) != 1 {
		t.Errorf("expected one failure marker in %q", bar)
	}
	// "Pl[a]n" plus padding: the shortcut is bracketed in place, not appended.
	if w := TabVisualWidth(Tabs[3], false, false); w != len("Pl[a]n")+2 {
		t.Errorf("inactive Plan width = %d", w)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('a') != 3 {
		t.Errorf("'a' should select Plan")
	}
	if TabIdxByKey('z') != -1 {
		t.Errorf("unknown key should return -1")
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.25, "0.25"},
		{2, "2"},
		{2.5, "2.5"},
		{40, "40"},
		{1500, "1.5t"},
	}
	for _, tt := range tests {
		if got := formatChartLabel(tt.in); got != tt.want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarChartMarksLimitAndWhiskers(t *testing.T) {
	bars := []Bar{
		{Value: 4, High: 9, Label: "03/01"},
		{Value: 12, High: 13, Label: "03/02"},
		{Value: 6, High: 6, Label: "03/03"},
	}
	out := BarChart(bars, 8, "#ffffff", 40, 10)

	if !strings.Contains(out, "╌") {
		t.Errorf("chart should draw the limit line:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	// One "│" per row is the y axis; anything beyond that is a whisker.
	if strings.Count(out, "│") <= len(lines)-2 {
		t.Errorf("chart should draw a confidence whisker:\n%s", out)
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, "03/01") || !strings.Contains(last, "03/03") {
		t.Errorf("x labels missing first/last date: %q", last)
	}
}

func TestBarChartNarrowFallsBackToSparkline(t *testing.T) {
	out := BarChart([]Bar{{Value: 1}, {Value: 2}}, 0, "#ffffff", 10, 10)
	if strings.Contains(out, "\n") {
		t.Errorf("narrow chart should be a single sparkline row, got %q", out)
	}
}

func TestXLabelsKeepsLastLabel(t *testing.T) {
	bars := make([]Bar, 10)
	for i := range bars {
		bars[i].Label = "d" + string(rune('0'+i))
	}
	got := xLabels(bars, 2, 1, 29)
	if !strings.HasPrefix(got, "d0") || !strings.HasSuffix(got, "d9") {
		t.Errorf("xLabels = %q", got)
	}
}
