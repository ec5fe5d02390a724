package carbonapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// mockHTTPClient lets tests fail at the transport layer.
type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

func TestFetchInsights_SendsPeriodAndBearer(t *testing.T) {
	var gotAuth, gotQuery, gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"summary":"ok","period":"week","average_daily_kg":4.2,"total_footprint_kg":0}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, StaticToken("tok-123"))
	got, err := c.FetchInsights(context.Background(), PeriodWeek)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "period=week", gotQuery)
	require.Equal(t, EndpointInsights, gotPath)
	require.NotEmpty(t, gotRequestID)

	require.Equal(t, "week", got.Period)
	require.NotNil(t, got.AverageDailyKg)
	require.Equal(t, 4.2, *got.AverageDailyKg)
	require.NotNil(t, got.TotalFootprintKg, "a reported zero must survive decoding")
	require.Equal(t, 0.0, *got.TotalFootprintKg)
	require.Nil(t, got.AverageDaily)
}

func TestClient_NoCredentialSendsUnauthenticated(t *testing.T) {
	var hadAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.FetchCoach(context.Background())
	require.Error(t, err)
	require.False(t, hadAuth)
	require.True(t, errors.Is(err, ErrUnauthorized))
	require.Equal(t, "HTTP 401", Reason(err))
	require.Equal(t, KindStatus, KindOf(err))
}

func TestClient_StatusFailureReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, StaticToken("t")).FetchPlan(context.Background())
	require.Error(t, err)
	require.Equal(t, "HTTP 500", Reason(err))
	require.False(t, errors.Is(err, ErrUnauthorized))
}

func TestClient_DecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"forecasts": [`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).FetchForecast(context.Background(), 30)
	require.Error(t, err)
	require.Equal(t, KindDecode, KindOf(err))
	require.NotEmpty(t, Reason(err))
}

func TestClient_TransportFailure(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	_, err := NewClient("http://carbon.test", nil, WithHTTPClient(mock)).FetchCoach(context.Background())
	require.Error(t, err)
	require.Equal(t, KindTransport, KindOf(err))
	require.Equal(t, "connection refused", Reason(err))
}

func TestClient_NullBodyDecodesToNil(t *testing.T) {
	mock := &mockHTTPClient{DoFunc: func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("null")),
		}, nil
	}}
	got, err := NewClient("http://carbon.test", nil, WithHTTPClient(mock)).FetchPlan(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFetchForecast_ClampsDays(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("days"))
		_, _ = w.Write([]byte(`{"forecasts":[],"risk_level":"low","summary":""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	for _, days := range []int{0, 7, 365} {
		_, err := c.FetchForecast(context.Background(), days)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"30", "7", "90"}, queries)
}

func TestSimulate_ForwardsParametersVerbatim(t *testing.T) {
	var body map[string]any
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"estimated_reduction_kg":12.5,"estimated_reduction_percent":8,
			"annual_impact_kg":650,"change_description":"Bike to work","affected_categories":["transport"]}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, nil).Simulate(context.Background(), SimulationRequest{
		ChangeType: "commute",
		Parameters: map[string]any{"from_mode": "car", "to_mode": "bike", "days_per_week": 5},
	})
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "commute", body["change_type"])
	require.Equal(t, map[string]any{"from_mode": "car", "to_mode": "bike", "days_per_week": float64(5)}, body["parameters"])
	require.Equal(t, 12.5, res.EstimatedReductionKg)
	require.Equal(t, []string{"transport"}, res.AffectedCategories)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"", PeriodMonth, false},
		{"day", PeriodDay, false},
		{" WEEK ", PeriodWeek, false},
		{"year", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got)
	}
	require.Equal(t, PeriodWeek, PeriodDay.Next())
	require.Equal(t, PeriodDay, PeriodMonth.Next())
}

func TestEnvToken(t *testing.T) {
	t.Setenv("CCOACH_TEST_TOKEN", "")
	_, ok := EnvToken("CCOACH_TEST_TOKEN").Token()
	require.False(t, ok)

	t.Setenv("CCOACH_TEST_TOKEN", " abc ")
	tok, ok := EnvToken("CCOACH_TEST_TOKEN").Token()
	require.True(t, ok)
	require.Equal(t, "abc", tok)
}
