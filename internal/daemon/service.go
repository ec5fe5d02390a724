// Package daemon provides the long-running background dashboard service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	"github.com/theirongolddev/ccoach/internal/carbonapi"
	"github.com/theirongolddev/ccoach/internal/dashboard"
	"github.com/theirongolddev/ccoach/internal/simulate"
)

// Config controls the daemon runtime behavior.
type Config struct {
	BaseURL      string
	Period       carbonapi.Period
	ForecastDays int
	Interval     time.Duration
	Addr         string
	EventsBuffer int
}

// Dashboard is the part of *dashboard.Dashboard the daemon polls.
type Dashboard interface {
	Refresh(ctx context.Context) <-chan struct{}
	View() dashboard.View
	Errors() []dashboard.ResourceError
	Statuses() []dashboard.ResourceStatus
}

// Simulator is the part of *simulate.Invoker the daemon serves. Each request is
// answered from its own call, never from the invoker's shared slot.
type Simulator interface {
	SimulateErr(ctx context.Context, ct simulate.ChangeType, params map[string]any) (*carbonapi.SimulationResult, error)
}

// Snapshot is a compact dashboard state for status/event payloads.
// Pointer fields are nil when the underlying resource is unavailable.
type Snapshot struct {
	At                 time.Time `json:"at"`
	Error              string    `json:"error,omitempty"`
	AverageDailyKg     *float64  `json:"average_daily_kg,omitempty"`
	TotalFootprintKg   *float64  `json:"total_footprint_kg,omitempty"`
	ProjectedMonthlyKg *float64  `json:"projected_monthly_kg,omitempty"`
	RiskLevel          string    `json:"risk_level,omitempty"`
	WeeklyBudgetKg     *float64  `json:"weekly_budget_kg,omitempty"`
	ProgressPercent    *float64  `json:"progress_percent,omitempty"`
	PlanDays           int       `json:"plan_days"`
}

// Delta captures snapshot changes between polls. A nil field did not change.
type Delta struct {
	AverageDailyKg     *float64 `json:"average_daily_kg,omitempty"`
	TotalFootprintKg   *float64 `json:"total_footprint_kg,omitempty"`
	ProjectedMonthlyKg *float64 `json:"projected_monthly_kg,omitempty"`
	ProgressPercent    *float64 `json:"progress_percent,omitempty"`
	RiskChanged        bool     `json:"risk_changed,omitempty"`
	ErrorChanged       bool     `json:"error_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.AverageDailyKg == nil &&
		d.TotalFootprintKg == nil &&
		d.ProjectedMonthlyKg == nil &&
		d.ProgressPercent == nil &&
		!d.RiskChanged &&
		!d.ErrorChanged
}

// Event is emitted whenever the dashboard snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time                  `json:"started_at"`
	LastPollAt      time.Time                  `json:"last_poll_at"`
	PollIntervalSec int                        `json:"poll_interval_sec"`
	PollCount       int64                      `json:"poll_count"`
	BaseURL         string                     `json:"base_url"`
	Period          string                     `json:"period"`
	ForecastDays    int                        `json:"forecast_days"`
	Summary         Snapshot                   `json:"summary"`
	Resources       []dashboard.ResourceStatus `json:"resources"`
	LastError       string                     `json:"last_error,omitempty"`
	EventCount      int                        `json:"event_count"`
	SubscriberCount int                        `json:"subscriber_count"`
}

// SimulateRequest is the POST /v1/simulate body.
type SimulateRequest struct {
	ChangeType    string         `json:"change_type"`
	Parameters    map[string]any `json:"parameters"`
	ApplyDefaults bool           `json:"apply_defaults"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	dash   Dashboard
	sim    Simulator
	events *hub

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
}

// keepAlive is how often an idle stream gets a comment line.
const keepAlive = 30 * time.Second

// New returns a daemon service. Zero config fields get defaults.
func New(cfg Config, dash Dashboard, sim Simulator) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	return &Service{
		cfg:       cfg,
		dash:      dash,
		sim:       sim,
		events:    newHub(cfg.EventsBuffer),
		startedAt: time.Now(),
	}
}

// Handler returns the daemon HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	mux.HandleFunc("GET /v1/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /v1/errors", s.handleErrors)
	mux.HandleFunc("GET /v1/events", s.handleEvents)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("POST /v1/simulate", s.handleSimulate)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Run serves the API and refreshes the dashboard every Interval until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	klog.InfoS("Daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval)

	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-serveErr:
			return fmt.Errorf("daemon http server: %w", err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	}
}

// pollOnce refreshes every resource and publishes an event if the snapshot moved.
func (s *Service) pollOnce(ctx context.Context) {
	select {
	case <-s.dash.Refresh(ctx):
	case <-ctx.Done():
		return
	}

	now := time.Now()
	view := s.dash.View()
	snap := snapshotFromView(view, now)
	for _, re := range s.dash.Errors() {
		klog.ErrorS(nil, "Resource fetch failed", "resource", re.Resource, "reason", re.Reason)
	}

	s.mu.Lock()
	ev, changed := nextEvent(s.snapshot, s.hasSnapshot, snap)
	s.snapshot, s.hasSnapshot = snap, true
	s.lastPollAt = now
	s.pollCount++
	s.lastError = view.Error
	s.mu.Unlock()

	if changed {
		ev = s.events.publish(ev)
		klog.V(2).InfoS("Published dashboard event", "id", ev.ID, "type", ev.Type)
	}
}

// nextEvent decides what, if anything, a new snapshot should announce.
func nextEvent(prev Snapshot, hadPrev bool, curr Snapshot) (Event, bool) {
	if !hadPrev {
		return Event{Type: EventSnapshot, Timestamp: curr.At, Snapshot: curr}, true
	}
	delta := diffSnapshots(prev, curr)
	if delta.isZero() {
		return Event{}, false
	}
	return Event{Type: EventDelta, Timestamp: curr.At, Snapshot: curr, Delta: delta}, true
}

func snapshotFromView(v dashboard.View, at time.Time) Snapshot {
	snap := Snapshot{At: at, Error: v.Error}
	if in := v.Data.Insights; in != nil {
		snap.AverageDailyKg = in.AverageDailyFootprint
		snap.TotalFootprintKg = in.TotalFootprint
	}
	if f := v.Data.Forecast; f != nil {
		total := f.ProjectedMonthlyTotal
		snap.ProjectedMonthlyKg = &total
		snap.RiskLevel = f.RiskLevel
	}
	if c := v.Data.Coach; c != nil {
		snap.WeeklyBudgetKg = c.WeeklyBudget
		snap.ProgressPercent = c.ProgressPercent
	}
	if p := v.Data.Plan; p != nil {
		snap.PlanDays = len(p.DailyPlan)
	}
	return snap
}

// diffValue returns curr-prev, or nil when unchanged. Absent values count as zero
// once the other side is present.
func diffValue(prev, curr *float64) *float64 {
	if prev == nil && curr == nil {
		return nil
	}
	var p, c float64
	if prev != nil {
		p = *prev
	}
	if curr != nil {
		c = *curr
	}
	d := c - p
	if math.Abs(d) < 1e-9 && (prev == nil) == (curr == nil) {
		return nil
	}
	return &d
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		AverageDailyKg:     diffValue(prev.AverageDailyKg, curr.AverageDailyKg),
		TotalFootprintKg:   diffValue(prev.TotalFootprintKg, curr.TotalFootprintKg),
		ProjectedMonthlyKg: diffValue(prev.ProjectedMonthlyKg, curr.ProjectedMonthlyKg),
		ProgressPercent:    diffValue(prev.ProgressPercent, curr.ProgressPercent),
		RiskChanged:        prev.RiskLevel != curr.RiskLevel,
		ErrorChanged:       prev.Error != curr.Error,
	}
}

func (s *Service) status() Status {
	resources := s.dash.Statuses()
	events, subs := s.events.counts()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		BaseURL:         s.cfg.BaseURL,
		Period:          string(s.cfg.Period),
		ForecastDays:    s.cfg.ForecastDays,
		Summary:         s.snapshot,
		Resources:       resources,
		LastError:       s.lastError,
		EventCount:      events,
		SubscriberCount: subs,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.V(1).InfoS("Writing response failed", "err", err)
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Service) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.View())
}

func (s *Service) handleErrors(w http.ResponseWriter, _ *http.Request) {
	errs := s.dash.Errors()
	if errs == nil {
		errs = []dashboard.ResourceError{}
	}
	writeJSON(w, http.StatusOK, errs)
}

// handleEvents lists retained events, optionally only those after ?since=<id>.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	since, err := eventID(r.URL.Query().Get("since"))
	if err != nil {
		http.Error(w, "invalid since", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.events.since(since))
}

func eventID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("bad event id %q", raw)
	}
	return id, nil
}

func (s *Service) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if s.sim == nil {
		http.Error(w, "simulation unavailable", http.StatusServiceUnavailable)
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ct, err := simulate.ParseChangeType(req.ChangeType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := req.Parameters
	if req.ApplyDefaults {
		params = simulate.WithDefaults(ct, params)
	}
	if params == nil {
		params = map[string]any{}
	}

	res, err := s.sim.SimulateErr(r.Context(), ct, params)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, simulate.State{Result: res})
	case r.Context().Err() != nil:
		// Client went away; nobody is left to answer.
	case errors.Is(err, simulate.ErrClosed):
		http.Error(w, "simulation unavailable", http.StatusServiceUnavailable)
	default:
		writeJSON(w, http.StatusBadGateway, simulate.State{Err: carbonapi.Reason(err)})
	}
}

// handleStream serves events as SSE. It greets with the current snapshot, replays
// anything newer than Last-Event-ID, then follows live events.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	lastID, err := eventID(r.Header.Get("Last-Event-ID"))
	if err != nil {
		http.Error(w, "invalid Last-Event-ID", http.StatusBadRequest)
		return
	}

	live, unsubscribe := s.events.subscribe(16)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.mu.RLock()
	greeting := Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: s.snapshot}
	s.mu.RUnlock()
	if writeSSE(w, greeting) != nil {
		return
	}
	if lastID > 0 {
		for _, ev := range s.events.since(lastID) {
			if writeSSE(w, ev) != nil {
				return
			}
			lastID = ev.ID
		}
	}
	flusher.Flush()

	ping := time.NewTicker(keepAlive)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case ev := <-live:
			if ev.ID <= lastID {
				continue
			}
			if writeSSE(w, ev) != nil {
				return
			}
		}
		flusher.Flush()
	}
}
