package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/fetch"
)

// Options selects the query parameters of the dashboard resources.
type Options struct {
	Period       carbonapi.Period
	ForecastDays int
}

// Dashboard owns the four loaders and their aggregator.
// All methods are safe for concurrent use.
type Dashboard struct {
	insights *fetch.Fetcher[carbonapi.RawInsights]
	forecast *fetch.Fetcher[carbonapi.RawForecast]
	coach    *fetch.Fetcher[carbonapi.RawCoachBudget]
	plan     *fetch.Fetcher[carbonapi.RawPlan]
	agg      *Aggregator

	mu     sync.Mutex
	period carbonapi.Period
	days   int
}

// New builds a dashboard. opts are applied to every loader.
func New(api API, o Options, opts ...fetch.Option) *Dashboard {
	if o.Period == "" {
		o.Period = carbonapi.PeriodMonth
	}
	d := &Dashboard{
		period: o.Period,
		days:   carbonapi.ClampForecastDays(o.ForecastDays),
	}
	d.insights = NewInsightsLoader(api, d.Period, opts...)
	d.forecast = NewForecastLoader(api, d.days, opts...)
	d.coach = NewCoachLoader(api, opts...)
	d.plan = NewPlanLoader(api, opts...)
	d.agg = NewAggregator(d.insights, d.forecast, d.coach, d.plan)
	return d
}

// Period returns the insights period used by the next insights cycle.
func (d *Dashboard) Period() carbonapi.Period {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.period
}

// ForecastDays returns the clamped forecast horizon.
func (d *Dashboard) ForecastDays() int {
	return d.days
}

// Refresh starts a cycle on every loader. The channel closes once all four settle.
func (d *Dashboard) Refresh(ctx context.Context) <-chan struct{} {
	return joinDone(
		d.insights.Fetch(ctx),
		d.forecast.Fetch(ctx),
		d.coach.Fetch(ctx),
		d.plan.Fetch(ctx),
	)
}

// RefreshResource starts a cycle on a single loader.
func (d *Dashboard) RefreshResource(ctx context.Context, r Resource) (<-chan struct{}, error) {
	switch r {
	case ResourceInsights:
		return d.insights.Fetch(ctx), nil
	case ResourceForecast:
		return d.forecast.Fetch(ctx), nil
	case ResourceCoach:
		return d.coach.Fetch(ctx), nil
	case ResourcePlan:
		return d.plan.Fetch(ctx), nil
	default:
		return nil, fmt.Errorf("unknown resource %q", r)
	}
}

// SetPeriod changes the insights period and refetches insights.
func (d *Dashboard) SetPeriod(ctx context.Context, p carbonapi.Period) <-chan struct{} {
	if p == "" {
		p = carbonapi.PeriodMonth
	}
	d.mu.Lock()
	d.period = p
	d.mu.Unlock()
	return d.insights.Fetch(ctx)
}

// View returns the combined state.
func (d *Dashboard) View() View { return d.agg.View() }

// Errors returns every current failure in priority order.
func (d *Dashboard) Errors() []ResourceError { return d.agg.Errors() }

// Statuses reports each resource's lifecycle.
func (d *Dashboard) Statuses() []ResourceStatus { return d.agg.Statuses() }

// Close disposes all loaders. Results arriving afterwards are dropped.
func (d *Dashboard) Close() {
	d.insights.Dispose()
	d.forecast.Dispose()
	d.coach.Dispose()
	d.plan.Dispose()
}

func joinDone(chans ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		for _, c := range chans {
			<-c
		}
	}()
	return out
}
