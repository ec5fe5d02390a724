// Package pipeline turns raw service payloads into canonical view models.
//
// Every function here is total: nil input yields nil output, missing optional sequences
// become empty slices, and the raw value passed in is never modified.
package pipeline

import (
	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/model"
)

// coalesce returns the first non-nil pointer. A present zero wins over a later alias.
func coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// NormalizeInsights resolves the average/total footprint aliases.
func NormalizeInsights(raw *carbonapi.RawInsights) *model.Insights {
	if raw == nil {
		return nil
	}
	r := *raw
	r.CategoryBreakdown = orEmpty(r.CategoryBreakdown)
	r.Top5Sources = orEmpty(r.Top5Sources)
	r.RecurringPatterns = orEmpty(r.RecurringPatterns)

	return &model.Insights{
		RawInsights:           r,
		AverageDailyFootprint: coalesce(r.AverageDailyKg, r.AverageDaily),
		TotalFootprint:        coalesce(r.TotalFootprintKg, r.TotalFootprint),
	}
}

// NormalizeForecast sums the daily predictions into ProjectedMonthlyTotal.
// Days without a prediction count as zero; risk_level is passed through.
func NormalizeForecast(raw *carbonapi.RawForecast) *model.Forecast {
	if raw == nil {
		return nil
	}
	r := *raw
	r.Forecasts = orEmpty(r.Forecasts)

	var total float64
	for _, d := range r.Forecasts {
		if d.PredictedKg != nil {
			total += *d.PredictedKg
		}
	}

	return &model.Forecast{
		RawForecast:           r,
		ProjectedMonthlyTotal: total,
	}
}

// NormalizeCoach resolves the weekly and daily budget aliases.
func NormalizeCoach(raw *carbonapi.RawCoachBudget) *model.Coach {
	if raw == nil {
		return nil
	}
	r := *raw
	r.TradeoffSuggestions = orEmpty(r.TradeoffSuggestions)

	return &model.Coach{
		RawCoachBudget: r,
		WeeklyBudget:   coalesce(r.RecommendedWeeklyLimitKg, r.WeeklyBudget),
		DailyBudget:    coalesce(r.RecommendedDailyLimitKg, r.DailyBudget),
	}
}

// NormalizePlan defaults every sequence to empty.
func NormalizePlan(raw *carbonapi.RawPlan) *model.Plan {
	if raw == nil {
		return nil
	}
	r := *raw
	r.ProblemAreas = orEmpty(r.ProblemAreas)
	r.ImprovementChecklist = orEmpty(r.ImprovementChecklist)
	r.DailyPlan = orEmpty(r.DailyPlan)
	r.Recipes = orEmpty(r.Recipes)
	r.CommuteAlternatives = orEmpty(r.CommuteAlternatives)
	r.HabitChanges = orEmpty(r.HabitChanges)
	r.SubscriptionsToReplace = orEmpty(r.SubscriptionsToReplace)

	return &model.Plan{RawPlan: r}
}
