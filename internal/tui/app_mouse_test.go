package tui

import (
	"testing"

	"github.com/theirongolddev/ccoach/internal/dashboard"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	names := []string{"Overview", "Forecast", "Coach", "Plan", "Simulate"}
	failed := []dashboard.ResourceError{{Resource: dashboard.ResourceForecast, Reason: "HTTP 500"}}

	for _, errs := range [][]dashboard.ResourceError{nil, failed} {
		for active := range names {
			a := App{activeTab: active, errs: errs}
			pos := 0

			for i := range names {
				w := tabWidthForTest(names[i], i == active, errs != nil && i == 1)
				x := pos + w/2 // midpoint inside this tab
				if got := a.tabAtX(x); got != i {
					t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
				}
				pos += w
				if i < len(names)-1 {
					pos++ // separator
				}
			}
			if got := a.tabAtX(pos + 5); got != -1 {
				t.Fatalf("active=%d: x past the last tab -> %d, want -1", active, got)
			}
		}
	}
}

func tabWidthForTest(name string, active, alert bool) int {
	w := len(name) + 2 // horizontal padding in tab renderer
	if !active {
		w += 2 // inactive tabs bracket the shortcut letter
	}
	if alert {
		w++
	}
	return w
}
