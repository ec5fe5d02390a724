package dashboard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/fetch"
)

type fixedSource[T any] struct {
	st fetch.State[T]
}

func (f *fixedSource[T]) State() fetch.State[T] { return f.st }

func ptr(f float64) *float64 { return &f }

type sources struct {
	insights *fixedSource[carbonapi.RawInsights]
	forecast *fixedSource[carbonapi.RawForecast]
	coach    *fixedSource[carbonapi.RawCoachBudget]
	plan     *fixedSource[carbonapi.RawPlan]
}

func newSources() (*sources, *Aggregator) {
	s := &sources{
		insights: &fixedSource[carbonapi.RawInsights]{},
		forecast: &fixedSource[carbonapi.RawForecast]{},
		coach:    &fixedSource[carbonapi.RawCoachBudget]{},
		plan:     &fixedSource[carbonapi.RawPlan]{},
	}
	return s, NewAggregator(s.insights, s.forecast, s.coach, s.plan)
}

func TestAggregator_IdleIsEmpty(t *testing.T) {
	_, agg := newSources()
	v := agg.View()
	require.False(t, v.Loading)
	require.Empty(t, v.Error)
	require.Equal(t, Data{}, v.Data)
	require.Empty(t, agg.Errors())
}

func TestAggregator_LoadingIsAnyPending(t *testing.T) {
	s, agg := newSources()
	s.coach.st = fetch.State[carbonapi.RawCoachBudget]{Status: fetch.Pending}
	require.True(t, agg.View().Loading)

	s.coach.st = fetch.State[carbonapi.RawCoachBudget]{Status: fetch.Resolved}
	require.False(t, agg.View().Loading)
}

func TestAggregator_FirstErrorWins(t *testing.T) {
	s, agg := newSources()
	s.forecast.st = fetch.State[carbonapi.RawForecast]{Status: fetch.Failed, Reason: "HTTP 502"}
	s.plan.st = fetch.State[carbonapi.RawPlan]{Status: fetch.Failed, Reason: "HTTP 500"}
	s.coach.st = fetch.State[carbonapi.RawCoachBudget]{
		Status: fetch.Resolved,
		Data:   &carbonapi.RawCoachBudget{WeeklyBudget: ptr(9)},
	}

	v := agg.View()
	require.Equal(t, "HTTP 502", v.Error)
	require.Nil(t, v.Data.Forecast)
	require.NotNil(t, v.Data.Coach, "other resources stay usable")
	require.Equal(t, ptr(9), v.Data.Coach.WeeklyBudget)

	require.Equal(t, []ResourceError{
		{Resource: ResourceForecast, Reason: "HTTP 502"},
		{Resource: ResourcePlan, Reason: "HTTP 500"},
	}, agg.Errors())

	s.insights.st = fetch.State[carbonapi.RawInsights]{Status: fetch.Failed, Reason: "HTTP 401"}
	require.Equal(t, "HTTP 401", agg.View().Error)
}

func TestAggregator_RecomputesEveryRead(t *testing.T) {
	s, agg := newSources()
	require.Nil(t, agg.View().Data.Insights)

	s.insights.st = fetch.State[carbonapi.RawInsights]{
		Status: fetch.Resolved,
		Data:   &carbonapi.RawInsights{AverageDailyKg: ptr(4.2)},
	}
	require.Equal(t, ptr(4.2), agg.View().Data.Insights.AverageDailyFootprint)
}

func TestAggregator_Statuses(t *testing.T) {
	s, agg := newSources()
	s.plan.st = fetch.State[carbonapi.RawPlan]{Status: fetch.Failed, Reason: "HTTP 500", Cycle: 3}

	st := agg.Statuses()
	require.Len(t, st, 4)
	require.Equal(t, ResourceInsights, st[0].Resource)
	require.Equal(t, "idle", st[0].Status)
	require.Equal(t, ResourceStatus{Resource: ResourcePlan, Status: "failed", Reason: "HTTP 500", Cycle: 3}, st[3])
}
