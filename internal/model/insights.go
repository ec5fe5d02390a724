// Package model defines the canonical view models handed to the presentation layer.
package model

import "github.com/theirongolddev/ccoach/internal/carbonapi"

// Insights is a normalized insights payload.
//
// The embedded raw fields are passed through untouched. AverageDailyFootprint and
// TotalFootprint resolve the current and legacy key spellings; nil means neither was sent.
type Insights struct {
	carbonapi.RawInsights

	AverageDailyFootprint *float64 `json:"average_daily_footprint"`
	TotalFootprint        *float64 `json:"total_footprint"`
}

// TopCategory returns the category with the largest share, or false if none reported one.
func (in *Insights) TopCategory() (carbonapi.CategoryAnalysis, bool) {
	var best carbonapi.CategoryAnalysis
	found := false
	for _, c := range in.CategoryBreakdown {
		if c.TotalKg == nil {
			continue
		}
		if !found || *c.TotalKg > *best.TotalKg {
			best = c
			found = true
		}
	}
	return best, found
}

// SubscriptionLike returns the recurring patterns flagged as subscription-like.
func (in *Insights) SubscriptionLike() []carbonapi.RecurringPattern {
	var out []carbonapi.RecurringPattern
	for _, p := range in.RecurringPatterns {
		if p.IsSubscriptionLike {
			out = append(out, p)
		}
	}
	return out
}
