package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/config"
	"github.com/theirongolddev/ccoach/internal/simulate"
)

type fakeAPI struct {
	fail bool

	mu      sync.Mutex
	periods []carbonapi.Period
}

func f64(v float64) *float64 { return &v }

var errDown = errors.New("service down")

func (f *fakeAPI) FetchInsights(_ context.Context, p carbonapi.Period) (*carbonapi.RawInsights, error) {
	f.mu.Lock()
	f.periods = append(f.periods, p)
	f.mu.Unlock()
	if f.fail {
		return nil, errDown
	}
	return &carbonapi.RawInsights{
		Period:           string(p),
		TotalFootprintKg: f64(42),
		AverageDaily:     f64(1.4),
		CategoryBreakdown: []carbonapi.CategoryAnalysis{
			{Category: "transport", TotalKg: f64(30), Percentage: f64(71)},
			{Category: "food", TotalKg: f64(12), Percentage: f64(29)},
		},
	}, nil
}

func (f *fakeAPI) FetchForecast(context.Context, int) (*carbonapi.RawForecast, error) {
	if f.fail {
		return nil, errDown
	}
	return &carbonapi.RawForecast{
		RiskLevel: "medium",
		Forecasts: []carbonapi.DayForecast{
			{Date: "2026-10-18", PredictedKg: f64(3), Trend: "stable"},
			{Date: "2026-10-19", PredictedKg: f64(5.5), Trend: "increasing"},
		},
	}, nil
}

func (f *fakeAPI) FetchCoach(context.Context) (*carbonapi.RawCoachBudget, error) {
	if f.fail {
		return nil, errDown
	}
	return &carbonapi.RawCoachBudget{WeeklyBudget: f64(14), ProgressPercent: f64(140)}, nil
}

func (f *fakeAPI) FetchPlan(context.Context) (*carbonapi.RawPlan, error) {
	if f.fail {
		return nil, errDown
	}
	return &carbonapi.RawPlan{DailyPlan: []carbonapi.PlanDay{{Day: 1, FocusArea: "food", Action: "Meatless Monday", DifficultyLevel: "easy"}}}, nil
}

func (f *fakeAPI) Simulate(context.Context, carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
	if f.fail {
		return nil, errDown
	}
	return &carbonapi.SimulationResult{EstimatedReductionKg: 8, ChangeDescription: "Switching commute from car to bike"}, nil
}

func (f *fakeAPI) seenPeriods() []carbonapi.Period {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]carbonapi.Period(nil), f.periods...)
}

func newTestApp(t *testing.T, api *fakeAPI) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	a := NewApp(Options{
		Config: config.DefaultConfig(),
		NewAPI: func(config.Config) API { return api },
	})
	t.Cleanup(func() { a.Close() })

	<-a.dash.Refresh(context.Background())
	m, _ := a.Update(RefreshDoneMsg{At: time.Now()})
	m, _ = m.(App).Update(tea.WindowSizeMsg{Width: 140, Height: 60})
	return m.(App)
}

func press(t *testing.T, a App, keys ...tea.KeyMsg) App {
	t.Helper()
	for _, k := range keys {
		m, _ := a.Update(k)
		a = m.(App)
	}
	return a
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestRefreshPopulatesEveryTab(t *testing.T) {
	a := newTestApp(t, &fakeAPI{})

	if !a.loaded {
		t.Fatal("app should be loaded after the first refresh")
	}
	if a.view.Data.Coach == nil || a.view.Data.Insights == nil {
		t.Fatalf("view not populated: %+v", a.view.Data)
	}

	tests := []struct {
		key  rune
		want string
	}{
		{'o', "transport"},
		{'f', "MEDIUM"},
		{'c', "140%"},
		{'a', "Meatless Monday"},
		{'s', "What-if Simulator"},
	}
	for _, tt := range tests {
		a = press(t, a, runeKey(tt.key))
		if out := a.View(); !strings.Contains(out, tt.want) {
			t.Errorf("tab %q: view missing %q", tt.key, tt.want)
		}
	}
}

func TestFailedResourcesShowReason(t *testing.T) {
	a := newTestApp(t, &fakeAPI{fail: true})

	if len(a.errs) != 4 {
		t.Fatalf("errs = %d, want 4", len(a.errs))
	}
	a = press(t, a, runeKey('c'))
	if out := a.View(); !strings.Contains(out, "service down") {
		t.Error("coach tab should show the failure reason")
	}
}

func TestPeriodKeyRefetchesInsights(t *testing.T) {
	api := &fakeAPI{}
	a := newTestApp(t, api)

	a = press(t, a, runeKey('p'))
	if got := a.dash.Period(); got != carbonapi.PeriodDay {
		t.Fatalf("period = %q, want %q", got, carbonapi.PeriodDay)
	}

	deadline := time.After(2 * time.Second)
	for {
		seen := api.seenPeriods()
		if seen[len(seen)-1] == carbonapi.PeriodDay {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("insights never refetched with the new period: %v", seen)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestNavigationKeys(t *testing.T) {
	a := newTestApp(t, &fakeAPI{})

	a = press(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	if a.activeTab != 4 {
		t.Errorf("left from first tab = %d, want 4", a.activeTab)
	}
	a = press(t, a, runeKey('3'))
	if a.activeTab != 2 {
		t.Errorf("'3' = %d, want 2", a.activeTab)
	}

	a = press(t, a, runeKey('a'), runeKey('j'), runeKey('j'))
	if a.planWeek != 3 {
		t.Errorf("planWeek = %d, want 3", a.planWeek)
	}
	for i := 0; i < 10; i++ {
		a = press(t, a, runeKey('j'))
	}
	if a.planWeek != planWeeks {
		t.Errorf("planWeek = %d, want clamp at %d", a.planWeek, planWeeks)
	}

	a = press(t, a, runeKey('?'))
	if !a.showHelp {
		t.Fatal("? should open help")
	}
	a = press(t, a, runeKey('x'))
	if a.showHelp {
		t.Error("any key should close help")
	}
}

func TestSimulateFormOpensAndCancels(t *testing.T) {
	a := newTestApp(t, &fakeAPI{})

	a = press(t, a, runeKey('s'), tea.KeyMsg{Type: tea.KeyEnter})
	if a.simForm == nil {
		t.Fatal("enter on the Simulate tab should open the form")
	}
	a = press(t, a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.simForm != nil {
		t.Error("esc should close the form")
	}
}

func TestSimulationResultRendered(t *testing.T) {
	a := newTestApp(t, &fakeAPI{})
	a = press(t, a, runeKey('s'))

	ct, params, err := a.simVals.request()
	if err != nil {
		t.Fatal(err)
	}
	msg := simulateCmd(context.Background(), a.sim, ct, params)()
	m, _ := a.Update(msg)
	a = m.(App)

	if a.simState.Result == nil {
		t.Fatal("result should be stored after the simulation returns")
	}
	if out := a.View(); !strings.Contains(out, "Switching commute") {
		t.Error("result description missing from view")
	}

	a = press(t, a, runeKey('d'))
	m, _ = a.Update(StateChangedMsg{})
	a = m.(App)
	if a.simState.Result != nil {
		t.Error("d should dismiss the result")
	}
}

func TestSimValuesRequest(t *testing.T) {
	v := newSimValues(simulate.ChangeCommute)
	ct, params, err := v.request()
	if err != nil {
		t.Fatal(err)
	}
	if ct != simulate.ChangeCommute {
		t.Errorf("change type = %q", ct)
	}
	if params["from_mode"] != "car" || params["to_mode"] != "bike" || params["days_per_week"] != 5 {
		t.Errorf("commute defaults = %v", params)
	}

	v.changeType = "diet"
	v.dietPercent = "45%"
	v.removedItems = "beef, lamb ,"
	_, params, err = v.request()
	if err != nil {
		t.Fatal(err)
	}
	if params["reduction_percent"] != 45 {
		t.Errorf("reduction_percent = %v", params["reduction_percent"])
	}
	items, _ := params["removed_items"].([]string)
	if len(items) != 2 || items[0] != "beef" || items[1] != "lamb" {
		t.Errorf("removed_items = %v", params["removed_items"])
	}

	v.changeType = "energy"
	v.efficiencyPercent = "150"
	if _, _, err := v.request(); err == nil {
		t.Error("out-of-range percent should fail")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.Token = "old"

	got := (&setupValues{baseURL: " https://carbon.example.com/ ", period: "week", theme: "glacier"}).apply(cfg)
	if got.API.BaseURL != "https://carbon.example.com" {
		t.Errorf("BaseURL = %q", got.API.BaseURL)
	}
	if got.API.Token != "old" {
		t.Errorf("blank token should keep the existing one, got %q", got.API.Token)
	}
	if got.Dashboard.Period != "week" || got.Appearance.Theme != "glacier" {
		t.Errorf("period/theme = %q/%q", got.Dashboard.Period, got.Appearance.Theme)
	}

	if err := validateBaseURL("ftp://x"); err == nil {
		t.Error("non-http URL should be rejected")
	}
	if err := validateBaseURL(""); err != nil {
		t.Error("blank URL falls back to the default")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t, &fakeAPI{})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if out := m.(App).View(); !strings.Contains(out, "too narrow") {
		t.Error("narrow terminals should get the warning view")
	}
}
