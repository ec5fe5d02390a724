package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not settle")
	}
}

// fakeService serves canned bodies per path and records insights periods.
type fakeService struct {
	mu      sync.Mutex
	bodies  map[string]string
	status  map[string]int
	periods []string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.URL.Path == carbonapi.EndpointInsights {
		f.periods = append(f.periods, r.URL.Query().Get("period"))
	}
	if code, ok := f.status[r.URL.Path]; ok {
		w.WriteHeader(code)
		return
	}
	_, _ = w.Write([]byte(f.bodies[r.URL.Path]))
}

func newFakeService() *fakeService {
	return &fakeService{
		bodies: map[string]string{
			carbonapi.EndpointInsights: `{"average_daily_kg":4.2,"summary":"steady"}`,
			carbonapi.EndpointForecast: `{"forecasts":[{"date":"2026-01-01","predicted_kg":3},{"date":"2026-01-02","predicted_kg":5.5}],"risk_level":"medium"}`,
			carbonapi.EndpointCoach:    `{"recommended_weekly_limit_kg":14,"progress_percent":62}`,
			carbonapi.EndpointPlan:     `{"summary":"plan","daily_plan":[]}`,
		},
		status: map[string]int{},
	}
}

func TestDashboard_EndToEnd(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(svc)
	defer srv.Close()

	d := New(carbonapi.NewClient(srv.URL, carbonapi.StaticToken("tok")), Options{})
	defer d.Close()

	require.Equal(t, carbonapi.PeriodMonth, d.Period())
	require.Equal(t, carbonapi.DefaultForecastDays, d.ForecastDays())

	wait(t, d.Refresh(context.Background()))

	v := d.View()
	require.False(t, v.Loading)
	require.Empty(t, v.Error)
	require.NotNil(t, v.Data.Insights)
	require.Equal(t, 4.2, *v.Data.Insights.AverageDailyFootprint)
	require.InDelta(t, 8.5, v.Data.Forecast.ProjectedMonthlyTotal, 1e-9)
	require.Equal(t, 14.0, *v.Data.Coach.WeeklyBudget)
	require.Equal(t, "plan", v.Data.Plan.Summary)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Equal(t, []string{"month"}, svc.periods)
}

func TestDashboard_FailureClearsOnlyThatResource(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(svc)
	defer srv.Close()

	d := New(carbonapi.NewClient(srv.URL, nil), Options{Period: carbonapi.PeriodWeek})
	defer d.Close()
	wait(t, d.Refresh(context.Background()))
	require.NotNil(t, d.View().Data.Coach)

	svc.mu.Lock()
	svc.status[carbonapi.EndpointCoach] = http.StatusInternalServerError
	svc.mu.Unlock()

	done, err := d.RefreshResource(context.Background(), ResourceCoach)
	require.NoError(t, err)
	wait(t, done)

	v := d.View()
	require.Equal(t, "HTTP 500", v.Error)
	require.Nil(t, v.Data.Coach)
	require.NotNil(t, v.Data.Insights)
	require.Equal(t, []ResourceError{{Resource: ResourceCoach, Reason: "HTTP 500"}}, d.Errors())

	_, err = d.RefreshResource(context.Background(), Resource("weather"))
	require.Error(t, err)
}

func TestDashboard_SetPeriodRefetchesInsights(t *testing.T) {
	svc := newFakeService()
	srv := httptest.NewServer(svc)
	defer srv.Close()

	d := New(carbonapi.NewClient(srv.URL, nil), Options{Period: carbonapi.PeriodDay, ForecastDays: 500})
	defer d.Close()
	require.Equal(t, carbonapi.MaxForecastDays, d.ForecastDays())

	wait(t, d.Refresh(context.Background()))
	wait(t, d.SetPeriod(context.Background(), carbonapi.PeriodWeek))

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Equal(t, []string{"day", "week"}, svc.periods)
	require.Equal(t, carbonapi.PeriodWeek, d.Period())
}

func TestDashboard_CloseDropsLateResults(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	defer close(release)

	d := New(carbonapi.NewClient(srv.URL, nil), Options{})
	done := d.Refresh(context.Background())
	require.True(t, d.View().Loading)

	d.Close()
	wait(t, done)

	v := d.View()
	require.Equal(t, Data{}, v.Data)
	require.Empty(t, v.Error)
}

func TestDashboard_EveryLoaderReportsHTTP500(t *testing.T) {
	endpoints := map[Resource]string{
		ResourceInsights: carbonapi.EndpointInsights,
		ResourceForecast: carbonapi.EndpointForecast,
		ResourceCoach:    carbonapi.EndpointCoach,
		ResourcePlan:     carbonapi.EndpointPlan,
	}
	for _, r := range Resources {
		t.Run(string(r), func(t *testing.T) {
			svc := newFakeService()
			svc.status[endpoints[r]] = http.StatusInternalServerError
			srv := httptest.NewServer(svc)
			defer srv.Close()

			d := New(carbonapi.NewClient(srv.URL, nil), Options{})
			defer d.Close()
			wait(t, d.Refresh(context.Background()))

			v := d.View()
			require.False(t, v.Loading)
			require.Equal(t, "HTTP 500", v.Error)
			require.Equal(t, []ResourceError{{Resource: r, Reason: "HTTP 500"}}, d.Errors())

			present := map[Resource]bool{
				ResourceInsights: v.Data.Insights != nil,
				ResourceForecast: v.Data.Forecast != nil,
				ResourceCoach:    v.Data.Coach != nil,
				ResourcePlan:     v.Data.Plan != nil,
			}
			for other, ok := range present {
				require.Equal(t, other != r, ok, "data presence for %s", other)
			}
		})
	}
}
