package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
)

type fakeAPI struct {
	mu   sync.Mutex
	reqs []carbonapi.SimulationRequest
	hook func(req carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error)
}

func (f *fakeAPI) Simulate(_ context.Context, req carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.hook(req)
}

func TestInvoker_CommuteDefaults(t *testing.T) {
	sent := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body carbonapi.SimulationRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		sent <- body.Parameters
		_, _ = w.Write([]byte(`{"estimated_reduction_kg":20,"change_description":"Bike"}`))
	}))
	defer srv.Close()

	inv := NewInvoker(carbonapi.NewClient(srv.URL, nil))
	res := inv.Simulate(context.Background(), ChangeCommute, WithDefaults(ChangeCommute, nil))
	require.NotNil(t, res)
	require.Equal(t, 20.0, res.EstimatedReductionKg)
	require.Equal(t, map[string]any{"from_mode": "car", "to_mode": "bike", "days_per_week": float64(5)}, <-sent)

	st := inv.State()
	require.False(t, st.Loading)
	require.Empty(t, st.Err)
	require.Equal(t, res, st.Result)
}

func TestInvoker_FailureSetsErrorAndReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	inv := NewInvoker(carbonapi.NewClient(srv.URL, nil))
	require.Nil(t, inv.Simulate(context.Background(), ChangeDiet, Defaults(ChangeDiet)))

	st := inv.State()
	require.Equal(t, "HTTP 422", st.Err)
	require.Nil(t, st.Result)

	inv.Dismiss()
	require.Equal(t, State{}, inv.State())
}

func TestInvoker_ForwardsParametersVerbatim(t *testing.T) {
	api := &fakeAPI{hook: func(carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
		return &carbonapi.SimulationResult{}, nil
	}}
	inv := NewInvoker(api)
	params := map[string]any{"custom": "x"}
	inv.Simulate(context.Background(), ChangeEnergy, params)

	require.Len(t, api.reqs, 1)
	require.Equal(t, "energy", api.reqs[0].ChangeType)
	require.Equal(t, map[string]any{"custom": "x"}, api.reqs[0].Parameters, "invoker adds no defaults")
}

func TestInvoker_LastResolutionWins(t *testing.T) {
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	api := &fakeAPI{hook: func(req carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
		if req.ChangeType == string(ChangeDiet) {
			close(firstStarted)
			<-releaseFirst
			return &carbonapi.SimulationResult{ChangeDescription: "diet"}, nil
		}
		return &carbonapi.SimulationResult{ChangeDescription: "energy"}, nil
	}}
	inv := NewInvoker(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		inv.Simulate(context.Background(), ChangeDiet, nil)
	}()
	<-firstStarted

	inv.Simulate(context.Background(), ChangeEnergy, nil)
	st := inv.State()
	require.True(t, st.Loading, "diet is still in flight")
	require.Equal(t, "energy", st.Result.ChangeDescription)

	close(releaseFirst)
	wg.Wait()

	st = inv.State()
	require.False(t, st.Loading)
	require.Equal(t, "diet", st.Result.ChangeDescription)
}

func TestInvoker_CloseDiscardsLateArrival(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	api := &fakeAPI{hook: func(carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
		close(started)
		<-release
		return nil, errors.New("late")
	}}
	changes := 0
	inv := NewInvoker(api, WithOnChange(func() { changes++ }))

	done := make(chan *carbonapi.SimulationResult)
	go func() { done <- inv.Simulate(context.Background(), ChangeShopping, nil) }()
	<-started

	inv.Close()
	close(release)
	require.Nil(t, <-done)
	require.Empty(t, inv.State().Err)
	require.Equal(t, 1, changes)

	require.Nil(t, inv.Simulate(context.Background(), ChangeShopping, nil))
}

func TestInvoker_SimulateErrReturnsOwnOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	inv := NewInvoker(carbonapi.NewClient(srv.URL, nil))
	res, err := inv.SimulateErr(context.Background(), ChangeEnergy, nil)
	require.Nil(t, res)
	require.Equal(t, "HTTP 502", carbonapi.Reason(err))
	require.Equal(t, "HTTP 502", inv.State().Err)

	inv.Close()
	_, err = inv.SimulateErr(context.Background(), ChangeEnergy, nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestInvoker_CanceledCallLeavesSlotAlone(t *testing.T) {
	api := &fakeAPI{hook: func(req carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
		return &carbonapi.SimulationResult{ChangeDescription: req.ChangeType}, nil
	}}
	inv := NewInvoker(api)
	require.NotNil(t, inv.Simulate(context.Background(), ChangeDiet, nil))

	ctx, cancel := context.WithCancel(context.Background())
	api.hook = func(carbonapi.SimulationRequest) (*carbonapi.SimulationResult, error) {
		cancel()
		return nil, ctx.Err()
	}
	res, err := inv.SimulateErr(ctx, ChangeCommute, nil)
	require.Nil(t, res)
	require.ErrorIs(t, err, context.Canceled)

	st := inv.State()
	require.False(t, st.Loading)
	require.Empty(t, st.Err)
	require.Equal(t, "diet", st.Result.ChangeDescription)
}

func TestDefaults(t *testing.T) {
	require.Equal(t, map[string]any{"reduction_percent": 30, "removed_items": []string{}}, Defaults(ChangeDiet))
	require.Equal(t, map[string]any{"reduction_percent": 30}, Defaults(ChangeShopping))
	require.Equal(t, map[string]any{"efficiency_improvement_percent": 20}, Defaults(ChangeEnergy))
	require.Empty(t, Defaults("travel"))

	params := map[string]any{"to_mode": "train"}
	merged := WithDefaults(ChangeCommute, params)
	require.Equal(t, "train", merged["to_mode"])
	require.Equal(t, "car", merged["from_mode"])
	require.Len(t, params, 1, "input not modified")

	// Each call returns a fresh map.
	Defaults(ChangeCommute)["from_mode"] = "bus"
	require.Equal(t, "car", Defaults(ChangeCommute)["from_mode"])
}

func TestParseChangeType(t *testing.T) {
	ct, err := ParseChangeType(" Commute ")
	require.NoError(t, err)
	require.Equal(t, ChangeCommute, ct)

	_, err = ParseChangeType("travel")
	require.Error(t, err)
}
