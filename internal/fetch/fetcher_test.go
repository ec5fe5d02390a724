package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch cycle did not settle")
	}
}

func TestFetcher_ResolvesPayload(t *testing.T) {
	f := New("insights", func(context.Context) (*payload, error) {
		return &payload{Value: "ok"}, nil
	})
	require.Equal(t, Idle, f.State().Status)

	wait(t, f.Fetch(context.Background()))

	st := f.State()
	require.Equal(t, Resolved, st.Status)
	require.False(t, st.Loading())
	require.Equal(t, &payload{Value: "ok"}, st.Data)
	require.Empty(t, st.Reason)
	require.Equal(t, uint64(1), st.Cycle)
}

func TestFetcher_FailureClearsDataAndSetsReason(t *testing.T) {
	fail := false
	f := New("coach", func(context.Context) (*payload, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &payload{Value: "first"}, nil
	}, WithReason(func(error) string { return "HTTP 500" }))

	wait(t, f.Fetch(context.Background()))
	require.Equal(t, Resolved, f.State().Status)

	fail = true
	wait(t, f.Fetch(context.Background()))

	st := f.State()
	require.Equal(t, Failed, st.Status)
	require.Equal(t, "HTTP 500", st.Reason)
	require.Nil(t, st.Data)
	require.EqualError(t, st.Err, "boom")
}

func TestFetcher_PendingKeepsLastPayload(t *testing.T) {
	release := make(chan struct{})
	calls := 0
	f := New("plan", func(ctx context.Context) (*payload, error) {
		calls++
		if calls == 2 {
			<-release
		}
		return &payload{Value: "v"}, nil
	})

	wait(t, f.Fetch(context.Background()))
	done := f.Fetch(context.Background())

	st := f.State()
	require.True(t, st.Loading())
	require.NotNil(t, st.Data)

	close(release)
	wait(t, done)
	require.Equal(t, Resolved, f.State().Status)
}

func TestFetcher_LatestCycleWins(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	var calls atomic.Int32
	var ctxA context.Context

	f := New("forecast", func(ctx context.Context) (*payload, error) {
		if calls.Add(1) == 1 {
			ctxA = ctx
			close(startedA)
			<-releaseA
			return &payload{Value: "A"}, nil
		}
		return &payload{Value: "B"}, nil
	})

	doneA := f.Fetch(context.Background())
	wait(t, startedA)
	doneB := f.Fetch(context.Background())
	wait(t, doneB)
	require.Equal(t, "B", f.State().Data.Value)

	// A was cancelled when B started but still reports a payload late.
	require.ErrorIs(t, ctxA.Err(), context.Canceled)
	close(releaseA)
	wait(t, doneA)

	st := f.State()
	require.Equal(t, Resolved, st.Status)
	require.Equal(t, "B", st.Data.Value)
	require.Equal(t, uint64(2), st.Cycle)
}

func TestFetcher_DisposeDiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	var changes atomic.Int32

	f := New("insights", func(context.Context) (*payload, error) {
		<-release
		return &payload{Value: "late"}, nil
	}, WithOnChange(func() { changes.Add(1) }))

	done := f.Fetch(context.Background())
	require.Equal(t, int32(1), changes.Load(), "pending transition notifies")

	f.Dispose()
	close(release)
	wait(t, done)

	st := f.State()
	require.Equal(t, Pending, st.Status)
	require.Nil(t, st.Data)
	require.Equal(t, int32(1), changes.Load())

	// Fetch after dispose is a no-op.
	wait(t, f.Fetch(context.Background()))
	require.Equal(t, uint64(1), f.State().Cycle)
}

func TestFetcher_ObserverSeesEveryOutcome(t *testing.T) {
	var mu sync.Mutex
	var outcomes []Outcome
	obs := ObserverFunc(func(s Settlement) {
		mu.Lock()
		outcomes = append(outcomes, s.Outcome)
		mu.Unlock()
	})

	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	var calls atomic.Int32
	f := New("coach", func(context.Context) (*payload, error) {
		if calls.Add(1) == 1 {
			close(startedA)
			<-releaseA
			return &payload{}, nil
		}
		return nil, errors.New("nope")
	}, WithObserver(obs))

	doneA := f.Fetch(context.Background())
	wait(t, startedA)
	wait(t, f.Fetch(context.Background()))
	close(releaseA)
	wait(t, doneA)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []Outcome{OutcomeFailed, OutcomeSuperseded}, outcomes)
	require.False(t, OutcomeSuperseded.Applied())
	require.True(t, OutcomeFailed.Applied())
}

func TestFetcher_NilPayloadResolves(t *testing.T) {
	f := New("plan", func(context.Context) (*payload, error) { return nil, nil })
	wait(t, f.Fetch(context.Background()))

	st := f.State()
	require.Equal(t, Resolved, st.Status)
	require.Nil(t, st.Data)
}

func TestFetcher_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := New("insights", func(context.Context) (*payload, error) {
		return &payload{}, nil
	}, WithClock(func() time.Time { return fixed }))

	wait(t, f.Fetch(context.Background()))
	require.Equal(t, fixed, f.State().UpdatedAt)
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "idle", Idle.String())
	require.Equal(t, "pending", Pending.String())
	require.Equal(t, "resolved", Resolved.String())
	require.Equal(t, "failed", Failed.String())
}
