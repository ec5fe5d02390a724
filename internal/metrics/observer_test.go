package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/theirongolddev/ccoach/internal/fetch"
)

func TestFetchObserverCountsOutcomes(t *testing.T) {
	c := FetchCyclesTotal.WithLabelValues("coach", "superseded")
	before := testutil.ToFloat64(c)

	var obs fetch.Observer = FetchObserver{}
	obs.CycleSettled(fetch.Settlement{Resource: "coach", Outcome: fetch.OutcomeSuperseded})
	obs.CycleSettled(fetch.Settlement{Resource: "coach", Outcome: fetch.OutcomeSuperseded})

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("superseded delta = %v, want 2", got)
	}
}
