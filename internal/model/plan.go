package model

import "github.com/theirongolddev/ccoach/internal/carbonapi"

// PlanLength is the number of days in a sustainability plan.
const PlanLength = 30

// Difficulty of a plan day.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Plan is a normalized 30-day plan. All sequences are non-nil.
type Plan struct {
	carbonapi.RawPlan
}

// Week returns the plan days for week n (1-based). Week 5 holds days 29 and 30.
func (p *Plan) Week(n int) []carbonapi.PlanDay {
	if n < 1 {
		return nil
	}
	lo, hi := (n-1)*7+1, n*7
	var out []carbonapi.PlanDay
	for _, d := range p.DailyPlan {
		if d.Day >= lo && d.Day <= hi {
			out = append(out, d)
		}
	}
	return out
}

// SavingsByDifficulty sums carbon_saved_vs_typical_kg per difficulty level.
// Days without a savings estimate are skipped.
func (p *Plan) SavingsByDifficulty() map[Difficulty]float64 {
	out := make(map[Difficulty]float64)
	for _, d := range p.DailyPlan {
		if d.CarbonSavedVsTypicalKg == nil {
			continue
		}
		out[Difficulty(d.DifficultyLevel)] += *d.CarbonSavedVsTypicalKg
	}
	return out
}
