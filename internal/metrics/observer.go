package metrics

import "github.com/theirongolddev/ccoach/internal/fetch"

// FetchObserver counts fetch cycle outcomes per resource.
type FetchObserver struct{}

// CycleSettled implements fetch.Observer.
func (FetchObserver) CycleSettled(s fetch.Settlement) {
	FetchCyclesTotal.WithLabelValues(s.Resource, string(s.Outcome)).Inc()
}
