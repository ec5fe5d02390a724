package model

import "github.com/theirongolddev/ccoach/internal/carbonapi"

// Coach is a normalized weekly budget.
//
// WeeklyBudget and DailyBudget prefer the recommended_*_limit_kg keys and fall back to the
// legacy weekly_budget and daily_budget keys. The embedded legacy fields stay reachable via
// RawCoachBudget.
type Coach struct {
	carbonapi.RawCoachBudget

	WeeklyBudget *float64 `json:"weekly_budget"`
	DailyBudget  *float64 `json:"daily_budget"`
}

// BudgetStatus buckets progress_percent for display.
type BudgetStatus int

const (
	StatusUnknown BudgetStatus = iota
	StatusOnTrack
	StatusModerate
	StatusCaution
	StatusOver
)

func (s BudgetStatus) String() string {
	switch s {
	case StatusOnTrack:
		return "On track"
	case StatusModerate:
		return "Moderate"
	case StatusCaution:
		return "Caution"
	case StatusOver:
		return "Over budget"
	default:
		return "Unknown"
	}
}

// StatusFor classifies a progress percentage.
func StatusFor(percent float64) BudgetStatus {
	switch {
	case percent <= 50:
		return StatusOnTrack
	case percent <= 80:
		return StatusModerate
	case percent < 100:
		return StatusCaution
	default:
		return StatusOver
	}
}

// BudgetProgress is the display form of progress_percent.
// Percent is the unclamped value; BarFraction is clamped to [0, 1] for progress bars.
type BudgetProgress struct {
	Percent     *float64
	BarFraction float64
	Status      BudgetStatus
}

// Progress derives bar and status values without touching the underlying data.
func (c *Coach) Progress() BudgetProgress {
	if c.ProgressPercent == nil {
		return BudgetProgress{}
	}
	pct := *c.ProgressPercent
	frac := pct / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return BudgetProgress{
		Percent:     c.ProgressPercent,
		BarFraction: frac,
		Status:      StatusFor(pct),
	}
}
