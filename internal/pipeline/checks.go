package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/model"
)

// CheckDailyPlan reports whether days holds exactly one entry per day 1..30 in order.
// It only reports; callers decide whether to log or display the problem.
func CheckDailyPlan(days []carbonapi.PlanDay) error {
	if len(days) != model.PlanLength {
		return fmt.Errorf("daily plan has %d days, want %d", len(days), model.PlanLength)
	}
	for i, d := range days {
		if d.Day != i+1 {
			return fmt.Errorf("daily plan entry %d is day %d, want %d", i, d.Day, i+1)
		}
	}
	return nil
}

// CheckForecastOrder reports whether forecast dates are strictly ascending.
func CheckForecastOrder(days []carbonapi.DayForecast) error {
	var prev time.Time
	for i, d := range days {
		t, err := time.Parse(time.DateOnly, d.Date)
		if err != nil {
			return fmt.Errorf("forecast entry %d: parsing date %q: %w", i, d.Date, err)
		}
		if i > 0 && !t.After(prev) {
			return fmt.Errorf("forecast entry %d (%s) is not after %s", i, d.Date, prev.Format(time.DateOnly))
		}
		prev = t
	}
	return nil
}
