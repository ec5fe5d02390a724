// Package dashboard wires the four analytics resources into one view for the presentation layer.
package dashboard

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/fetch"
	"github.com/theirongolddev/ccoach/internal/pipeline"
)

// Resource names one of the dashboard's remote resources.
type Resource string

const (
	ResourceInsights Resource = "insights"
	ResourceForecast Resource = "forecast"
	ResourceCoach    Resource = "coach"
	ResourcePlan     Resource = "plan"
)

// Resources lists every resource in error-priority order.
var Resources = []Resource{ResourceInsights, ResourceForecast, ResourceCoach, ResourcePlan}

// API is the subset of carbonapi.Client the loaders need.
type API interface {
	FetchInsights(ctx context.Context, period carbonapi.Period) (*carbonapi.RawInsights, error)
	FetchForecast(ctx context.Context, days int) (*carbonapi.RawForecast, error)
	FetchCoach(ctx context.Context) (*carbonapi.RawCoachBudget, error)
	FetchPlan(ctx context.Context) (*carbonapi.RawPlan, error)
}

// NewInsightsLoader fetches insights for whatever period returns at cycle start.
func NewInsightsLoader(api API, period func() carbonapi.Period, opts ...fetch.Option) *fetch.Fetcher[carbonapi.RawInsights] {
	return fetch.New(string(ResourceInsights), func(ctx context.Context) (*carbonapi.RawInsights, error) {
		return api.FetchInsights(ctx, period())
	}, loaderOptions(opts)...)
}

// NewForecastLoader fetches a forecast over days, clamped to the service limit.
func NewForecastLoader(api API, days int, opts ...fetch.Option) *fetch.Fetcher[carbonapi.RawForecast] {
	days = carbonapi.ClampForecastDays(days)
	return fetch.New(string(ResourceForecast), func(ctx context.Context) (*carbonapi.RawForecast, error) {
		f, err := api.FetchForecast(ctx, days)
		if err == nil && f != nil {
			if cerr := pipeline.CheckForecastOrder(f.Forecasts); cerr != nil {
				klog.InfoS("Forecast payload out of order", "err", cerr)
			}
		}
		return f, err
	}, loaderOptions(opts)...)
}

// NewCoachLoader fetches the weekly budget.
func NewCoachLoader(api API, opts ...fetch.Option) *fetch.Fetcher[carbonapi.RawCoachBudget] {
	return fetch.New(string(ResourceCoach), api.FetchCoach, loaderOptions(opts)...)
}

// NewPlanLoader fetches the 30-day plan.
func NewPlanLoader(api API, opts ...fetch.Option) *fetch.Fetcher[carbonapi.RawPlan] {
	return fetch.New(string(ResourcePlan), func(ctx context.Context) (*carbonapi.RawPlan, error) {
		p, err := api.FetchPlan(ctx)
		if err == nil && p != nil {
			if cerr := pipeline.CheckDailyPlan(p.DailyPlan); cerr != nil {
				klog.InfoS("Plan payload irregular", "err", cerr)
			}
		}
		return p, err
	}, loaderOptions(opts)...)
}

// loaderOptions puts the service reason mapping first so callers can still override it.
func loaderOptions(opts []fetch.Option) []fetch.Option {
	return append([]fetch.Option{fetch.WithReason(carbonapi.Reason)}, opts...)
}
