package dashboard

import (
	"time"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/fetch"
	"github.com/theirongolddev/ccoach/internal/model"
	"github.com/theirongolddev/ccoach/internal/pipeline"
)

// Source is anything that can report a fetch state. *fetch.Fetcher satisfies it.
type Source[T any] interface {
	State() fetch.State[T]
}

// Data holds the normalized payloads. Each field is independently nil.
type Data struct {
	Insights *model.Insights `json:"insights"`
	Forecast *model.Forecast `json:"forecast"`
	Coach    *model.Coach    `json:"coach"`
	Plan     *model.Plan     `json:"plan"`
}

// View is the combined dashboard state.
// Error holds only the first failure in Resources order; see Aggregator.Errors for all of them.
type View struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Data    Data   `json:"data"`
}

// ResourceError pairs a resource with its failure reason.
type ResourceError struct {
	Resource Resource `json:"resource"`
	Reason   string   `json:"reason"`
}

// ResourceStatus is the lifecycle summary of one resource.
type ResourceStatus struct {
	Resource  Resource  `json:"resource"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Cycle     uint64    `json:"cycle"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Aggregator combines four sources. It holds no state of its own: every read
// recomputes from the sources.
type Aggregator struct {
	insights Source[carbonapi.RawInsights]
	forecast Source[carbonapi.RawForecast]
	coach    Source[carbonapi.RawCoachBudget]
	plan     Source[carbonapi.RawPlan]
}

// NewAggregator returns an Aggregator over the given sources.
func NewAggregator(
	insights Source[carbonapi.RawInsights],
	forecast Source[carbonapi.RawForecast],
	coach Source[carbonapi.RawCoachBudget],
	plan Source[carbonapi.RawPlan],
) *Aggregator {
	return &Aggregator{insights: insights, forecast: forecast, coach: coach, plan: plan}
}

// View snapshots all four sources and normalizes their payloads.
func (a *Aggregator) View() View {
	ins := a.insights.State()
	fc := a.forecast.State()
	co := a.coach.State()
	pl := a.plan.State()

	v := View{
		Loading: ins.Loading() || fc.Loading() || co.Loading() || pl.Loading(),
		Data: Data{
			Insights: pipeline.NormalizeInsights(ins.Data),
			Forecast: pipeline.NormalizeForecast(fc.Data),
			Coach:    pipeline.NormalizeCoach(co.Data),
			Plan:     pipeline.NormalizePlan(pl.Data),
		},
	}
	if errs := collectErrors(ins.Reason, fc.Reason, co.Reason, pl.Reason); len(errs) > 0 {
		v.Error = errs[0].Reason
	}
	return v
}

// Errors returns every current failure in priority order.
func (a *Aggregator) Errors() []ResourceError {
	return collectErrors(
		a.insights.State().Reason,
		a.forecast.State().Reason,
		a.coach.State().Reason,
		a.plan.State().Reason,
	)
}

// Statuses reports the lifecycle of each resource in Resources order.
func (a *Aggregator) Statuses() []ResourceStatus {
	return []ResourceStatus{
		statusOf(ResourceInsights, a.insights.State()),
		statusOf(ResourceForecast, a.forecast.State()),
		statusOf(ResourceCoach, a.coach.State()),
		statusOf(ResourcePlan, a.plan.State()),
	}
}

func statusOf[T any](r Resource, st fetch.State[T]) ResourceStatus {
	return ResourceStatus{
		Resource:  r,
		Status:    st.Status.String(),
		Reason:    st.Reason,
		Cycle:     st.Cycle,
		UpdatedAt: st.UpdatedAt,
	}
}

// collectErrors takes reasons in Resources order.
func collectErrors(reasons ...string) []ResourceError {
	var out []ResourceError
	for i, reason := range reasons {
		if reason != "" {
			out = append(out, ResourceError{Resource: Resources[i], Reason: reason})
		}
	}
	return out
}
