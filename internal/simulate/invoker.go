package simulate

import (
	"context"
	"errors"
	"sync"

	"k8s.io/klog/v2"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/metrics"
)

// API is the subset of carbonapi.Client the invoker needs.
type API interface {
	Simulate(ctx context.Context, req carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error)
}

// ErrClosed is returned by SimulateErr after Close.
var ErrClosed = errors.New("simulate: invoker closed")

// State is a snapshot of the invoker's slot.
type State struct {
	Loading bool                        `json:"loading"`
	Err     string                      `json:"error,omitempty"`
	Result  *carbonapi.SimulationResult `json:"result,omitempty"`
}

// Invoker forwards simulation requests and keeps the outcome of the most recent one
// to finish. Overlapping calls are not serialized; whichever resolves last owns the slot.
type Invoker struct {
	api      API
	onChange func()

	mu       sync.Mutex
	inflight int
	err      string
	result   *carbonapi.SimulationResult
	closed   bool
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithOnChange registers a callback fired after each state change.
func WithOnChange(fn func()) Option {
	return func(inv *Invoker) { inv.onChange = fn }
}

// NewInvoker returns an idle Invoker.
func NewInvoker(api API, opts ...Option) *Invoker {
	inv := &Invoker{api: api}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Simulate sends params exactly as given and blocks for the result.
// On failure it records the reason in the error slot and returns nil.
func (inv *Invoker) Simulate(ctx context.Context, ct ChangeType, params map[string]any) *carbonapi.SimulationResult {
	res, _ := inv.SimulateErr(ctx, ct, params)
	return res
}

// SimulateErr is Simulate for callers that need this call's own outcome rather than
// whatever the shared slot holds when they look. A call whose ctx was canceled by the
// caller leaves the slot untouched.
func (inv *Invoker) SimulateErr(ctx context.Context, ct ChangeType, params map[string]any) (*carbonapi.SimulationResult, error) {
	inv.mu.Lock()
	if inv.closed {
		inv.mu.Unlock()
		return nil, ErrClosed
	}
	inv.inflight++
	inv.err = ""
	inv.mu.Unlock()
	inv.notify()

	res, err := inv.api.Simulate(ctx, carbonapi.SimulationRequest{
		ChangeType: string(ct),
		Parameters: params,
	})
	abandoned := err != nil && ctx.Err() != nil

	outcome := "resolved"
	switch {
	case abandoned:
		outcome = "canceled"
		res = nil
	case err != nil:
		outcome = "failed"
		res = nil
	}

	inv.mu.Lock()
	if inv.closed {
		inv.mu.Unlock()
		metrics.SimulationsTotal.WithLabelValues(string(ct), "disposed").Inc()
		return nil, ErrClosed
	}
	inv.inflight--
	switch {
	case abandoned:
	case err != nil:
		inv.err = carbonapi.Reason(err)
		inv.result = nil
	default:
		inv.err = ""
		inv.result = res
	}
	inv.mu.Unlock()

	metrics.SimulationsTotal.WithLabelValues(string(ct), outcome).Inc()
	if err != nil {
		klog.V(1).InfoS("Simulation failed", "changeType", ct, "outcome", outcome, "err", err)
	}
	inv.notify()
	return res, err
}

// State returns the current slot.
func (inv *Invoker) State() State {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return State{Loading: inv.inflight > 0, Err: inv.err, Result: inv.result}
}

// Dismiss clears the result and error. In-flight calls still report when they finish.
func (inv *Invoker) Dismiss() {
	inv.mu.Lock()
	inv.err = ""
	inv.result = nil
	inv.mu.Unlock()
	inv.notify()
}

// Close discards every later arrival.
func (inv *Invoker) Close() {
	inv.mu.Lock()
	inv.closed = true
	inv.mu.Unlock()
}

func (inv *Invoker) notify() {
	inv.mu.Lock()
	closed := inv.closed
	inv.mu.Unlock()
	if inv.onChange != nil && !closed {
		inv.onChange()
	}
}
