// Package fetch tracks the request lifecycle of a single remote resource.
//
// A Fetcher moves through Idle -> Pending -> Resolved|Failed. Only the most recently
// started cycle may change the visible state; results of superseded cycles and of cycles
// that finish after Dispose are dropped on arrival.
package fetch

import (
	"context"
	"sync"
	"time"
)

// Status is the externally visible phase of a Fetcher.
type Status int

const (
	Idle Status = iota
	Pending
	Resolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a point-in-time copy of a Fetcher.
//
// Data keeps the last resolved payload while a refetch is Pending and is cleared when a
// cycle fails, so Failed never carries data.
type State[T any] struct {
	Status    Status
	Data      *T
	Reason    string
	Err       error
	Cycle     uint64
	UpdatedAt time.Time
}

// Loading reports whether a cycle is in flight.
func (s State[T]) Loading() bool { return s.Status == Pending }

// Func performs one fetch. A nil payload with a nil error is a valid empty result.
type Func[T any] func(ctx context.Context) (*T, error)

// Fetcher is safe for concurrent use.
type Fetcher[T any] struct {
	name     string
	fn       Func[T]
	reason   func(error) string
	onChange func()
	observer Observer
	now      func() time.Time

	mu       sync.Mutex
	state    State[T]
	gen      uint64
	cancel   context.CancelFunc
	disposed bool

	// cbMu serializes change callbacks with Dispose so none run after it returns.
	cbMu sync.Mutex
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	reason   func(error) string
	onChange func()
	observer Observer
	now      func() time.Time
}

// WithReason sets how errors collapse into the Reason string.
func WithReason(fn func(error) string) Option {
	return func(o *options) { o.reason = fn }
}

// WithOnChange registers a callback fired after every visible state change.
// It runs without the fetcher lock held and never after Dispose returns.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// WithObserver reports the outcome of every cycle, including discarded ones.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New returns an idle Fetcher for the named resource.
func New[T any](name string, fn Func[T], opts ...Option) *Fetcher[T] {
	o := options{
		reason: func(err error) string { return err.Error() },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fetcher[T]{
		name:     name,
		fn:       fn,
		reason:   o.reason,
		onChange: o.onChange,
		observer: o.observer,
		now:      o.now,
	}
}

// Name returns the resource name given to New.
func (f *Fetcher[T]) Name() string { return f.name }

// State returns a copy of the current state.
func (f *Fetcher[T]) State() State[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Fetch starts a new cycle and cancels the request of any cycle still in flight.
// The returned channel closes once this cycle has settled, whether its result was
// applied or discarded. After Dispose it returns an already-closed channel.
func (f *Fetcher[T]) Fetch(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	f.mu.Lock()
	if f.disposed {
		f.mu.Unlock()
		close(done)
		return done
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	cycle := f.gen
	cycleCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.state = State[T]{
		Status:    Pending,
		Data:      f.state.Data,
		Cycle:     cycle,
		UpdatedAt: f.now(),
	}
	f.mu.Unlock()

	f.notify()

	go func() {
		defer close(done)
		defer cancel()

		start := f.now()
		data, err := f.fn(cycleCtx)
		f.settle(cycle, start, data, err)
	}()

	return done
}

// Dispose cancels in-flight work. No state change or callback happens afterwards.
func (f *Fetcher[T]) Dispose() {
	f.mu.Lock()
	f.disposed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.mu.Unlock()

	// Wait out a callback that passed its disposed check before we got here.
	f.cbMu.Lock()
	f.cbMu.Unlock() //nolint:staticcheck // empty critical section is the barrier
}

// Disposed reports whether Dispose has been called.
func (f *Fetcher[T]) Disposed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disposed
}

func (f *Fetcher[T]) settle(cycle uint64, start time.Time, data *T, err error) {
	s := Settlement{
		Resource: f.name,
		Cycle:    cycle,
		Started:  start,
		Duration: f.now().Sub(start),
	}
	if err != nil {
		s.Reason = f.reason(err)
		s.Err = err
	}

	f.mu.Lock()
	switch {
	case f.disposed:
		s.Outcome = OutcomeDisposed
	case cycle != f.gen:
		s.Outcome = OutcomeSuperseded
	case err != nil:
		s.Outcome = OutcomeFailed
		f.state = State[T]{
			Status:    Failed,
			Reason:    s.Reason,
			Err:       err,
			Cycle:     cycle,
			UpdatedAt: f.now(),
		}
		f.cancel = nil
	default:
		s.Outcome = OutcomeResolved
		f.state = State[T]{
			Status:    Resolved,
			Data:      data,
			Cycle:     cycle,
			UpdatedAt: f.now(),
		}
		f.cancel = nil
	}
	f.mu.Unlock()

	if f.observer != nil {
		f.observer.CycleSettled(s)
	}
	if s.Outcome == OutcomeResolved || s.Outcome == OutcomeFailed {
		f.notify()
	}
}

func (f *Fetcher[T]) notify() {
	if f.onChange == nil {
		return
	}
	f.cbMu.Lock()
	defer f.cbMu.Unlock()
	if f.Disposed() {
		return
	}
	f.onChange()
}
