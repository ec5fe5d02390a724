package cli

import (
	"strings"
	"testing"

	"github.com/theirongolddev/ccoach/internal/model"
	"github.com/theirongolddev/ccoach/internal/tui/theme"
)

func TestRenderTableIncludesCells(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Top Sources",
		Headers: []string{"Item", "kg"},
		Rows:    [][]string{{"Beef", "12.00 kg"}, {"---"}, {"Total", "12.00 kg"}},
	})
	for _, want := range []string{"Top Sources", "Item", "Beef", "12.00 kg", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Error("empty table should render nothing")
	}
}

func TestRenderBudgetBarShowsUnclampedPercent(t *testing.T) {
	c := &model.Coach{}
	pct := 140.0
	c.ProgressPercent = &pct

	out := RenderBudgetBar(c.Progress(), 10)
	if !strings.Contains(out, "140%") {
		t.Errorf("bar label should keep 140%%: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("█", 10)) {
		t.Errorf("bar should be full: %q", out)
	}
	if !strings.Contains(RenderBudgetBar(model.BudgetProgress{}, 4), Placeholder) {
		t.Error("absent progress should show placeholder")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 1}); got != "▁█" {
		t.Errorf("RenderSparkline = %q", got)
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty series should render nothing")
	}
}

func TestUseThemeSwitchesPalette(t *testing.T) {
	defer UseTheme("")
	UseTheme("ember")
	if styles.border != theme.Ember.Border {
		t.Errorf("border = %v, want ember border", styles.border)
	}
	UseTheme("no-such-theme")
	if styles.border != theme.Moss.Border {
		t.Errorf("unknown theme should fall back to moss, got %v", styles.border)
	}
}
