package model

import "github.com/theirongolddev/ccoach/internal/carbonapi"

// RiskLevel is the service's assessment of overshooting the budget.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is one of the documented levels.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Trend is the direction of a single forecast day.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Valid reports whether t is one of the documented trends.
func (t Trend) Valid() bool {
	switch t {
	case TrendIncreasing, TrendDecreasing, TrendStable:
		return true
	}
	return false
}

// Arrow returns a one-glyph rendering of the trend.
func (t Trend) Arrow() string {
	switch t {
	case TrendIncreasing:
		return "↑"
	case TrendDecreasing:
		return "↓"
	case TrendStable:
		return "→"
	default:
		return "?"
	}
}

// Forecast is a normalized forecast payload.
// ProjectedMonthlyTotal is the sum of predicted_kg over all days, 0 when there are none.
type Forecast struct {
	carbonapi.RawForecast

	ProjectedMonthlyTotal float64 `json:"projected_monthly_total"`
}

// Risk returns the risk level as a typed value. Unknown values pass through as-is.
func (f *Forecast) Risk() RiskLevel {
	return RiskLevel(f.RiskLevel)
}

// Series returns predicted_kg per day in order, with absent values as 0.
func (f *Forecast) Series() []float64 {
	out := make([]float64, len(f.Forecasts))
	for i, d := range f.Forecasts {
		if d.PredictedKg != nil {
			out[i] = *d.PredictedKg
		}
	}
	return out
}

// Peak returns the day with the highest prediction, or false if no day has one.
func (f *Forecast) Peak() (carbonapi.DayForecast, bool) {
	var best carbonapi.DayForecast
	found := false
	for _, d := range f.Forecasts {
		if d.PredictedKg == nil {
			continue
		}
		if !found || *d.PredictedKg > *best.PredictedKg {
			best = d
			found = true
		}
	}
	return best, found
}
