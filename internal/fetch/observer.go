package fetch

import "time"

// Outcome says what happened to a finished cycle.
type Outcome string

const (
	OutcomeResolved   Outcome = "resolved"
	OutcomeFailed     Outcome = "failed"
	OutcomeSuperseded Outcome = "superseded" // a newer cycle was started; result dropped
	OutcomeDisposed   Outcome = "disposed"   // owner was torn down; result dropped
)

// Applied reports whether the cycle changed the visible state.
func (o Outcome) Applied() bool {
	return o == OutcomeResolved || o == OutcomeFailed
}

// Settlement describes one finished cycle.
type Settlement struct {
	Resource string
	Cycle    uint64
	Outcome  Outcome
	Reason   string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Observer receives every Settlement. Calls may come from any goroutine.
type Observer interface {
	CycleSettled(s Settlement)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Settlement)

// CycleSettled implements Observer.
func (f ObserverFunc) CycleSettled(s Settlement) { f(s) }

// Observers fans a Settlement out to several observers in order.
type Observers []Observer

// CycleSettled implements Observer.
func (os Observers) CycleSettled(s Settlement) {
	for _, o := range os {
		if o != nil {
			o.CycleSettled(s)
		}
	}
}
