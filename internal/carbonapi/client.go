// Package carbonapi provides a client for the carbon-budgeting analytics endpoints.
package carbonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/theirongolddev/ccoach/internal/metrics"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	EndpointInsights = "/api/carbon/insights"
	EndpointForecast = "/api/carbon/forecast"
	EndpointCoach    = "/api/carbon/coach"
	EndpointPlan     = "/api/carbon/plan/30-day"
	EndpointSimulate = "/api/carbon/simulate"

	// MaxForecastDays is the server-side cap on the forecast horizon.
	MaxForecastDays     = 90
	DefaultForecastDays = 30

	maxBodySize      = 4 << 20 // 4 MB
	defaultUserAgent = "ccoach/1.0"
)

// Period selects the insights aggregation window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Periods lists the accepted insights periods in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod validates a period name. The empty string maps to PeriodMonth.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	default:
		return "", fmt.Errorf("invalid period %q (want day, week or month)", s)
	}
}

// Next cycles day -> week -> month -> day.
func (p Period) Next() Period {
	for i, candidate := range Periods {
		if candidate == p {
			return Periods[(i+1)%len(Periods)]
		}
	}
	return PeriodMonth
}

// ClampForecastDays bounds days to 1..MaxForecastDays; zero or negative means the default.
func ClampForecastDays(days int) int {
	if days <= 0 {
		return DefaultForecastDays
	}
	if days > MaxForecastDays {
		return MaxForecastDays
	}
	return days
}

// HTTPClient allows swapping http.Client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the carbon analytics service.
// It never retries and adds no deadline of its own; callers bound requests via ctx.
type Client struct {
	baseURL   string
	creds     CredentialSource
	http      HTTPClient
	userAgent string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient injects the transport used for every request.
func WithHTTPClient(h HTTPClient) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client rooted at baseURL. A nil creds sends unauthenticated requests.
func NewClient(baseURL string, creds CredentialSource, opts ...ClientOption) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if creds == nil {
		creds = NoCredential
	}
	c := &Client{
		baseURL:   baseURL,
		creds:     creds,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchInsights returns aggregate statistics for the given period.
func (c *Client) FetchInsights(ctx context.Context, period Period) (*RawInsights, error) {
	if period == "" {
		period = PeriodMonth
	}
	q := url.Values{"period": {string(period)}}
	return doJSON[RawInsights](ctx, c, http.MethodGet, EndpointInsights, q, nil)
}

// FetchForecast returns the daily emission forecast for the next days.
func (c *Client) FetchForecast(ctx context.Context, days int) (*RawForecast, error) {
	q := url.Values{"days": {strconv.Itoa(ClampForecastDays(days))}}
	return doJSON[RawForecast](ctx, c, http.MethodGet, EndpointForecast, q, nil)
}

// FetchCoach returns the adaptive weekly budget.
func (c *Client) FetchCoach(ctx context.Context) (*RawCoachBudget, error) {
	return doJSON[RawCoachBudget](ctx, c, http.MethodGet, EndpointCoach, nil, nil)
}

// FetchPlan returns the 30-day sustainability plan.
func (c *Client) FetchPlan(ctx context.Context) (*RawPlan, error) {
	return doJSON[RawPlan](ctx, c, http.MethodGet, EndpointPlan, nil, nil)
}

// Simulate posts a what-if request. Parameters are sent exactly as given.
func (c *Client) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	return doJSON[SimulationResult](ctx, c, http.MethodPost, EndpointSimulate, nil, req)
}

// doJSON performs one request and decodes the body into a *T.
// A literal JSON null decodes to a nil *T without error.
func doJSON[T any](ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) (*T, error) {
	raw, err := c.do(ctx, method, endpoint, query, body)
	if err != nil {
		return nil, err
	}

	var out *T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &Error{Kind: KindDecode, Endpoint: endpoint, Err: err}
	}
	return out, nil
}

// do sends an authenticated request and returns the response body.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) ([]byte, error) {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	// Absence is forwarded as an unauthenticated request; the service rejects it.
	token, ok := c.creds.Token()
	if ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	klog.V(2).InfoS("Carbon API request", "method", method, "url", target,
		"requestID", requestID, "hasToken", ok)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, &Error{Kind: KindTransport, Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		klog.V(2).InfoS("Carbon API non-success status", "url", target,
			"requestID", requestID, "status", resp.StatusCode)
		return nil, &Error{Kind: KindStatus, Endpoint: endpoint, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("reading response: %w", err)}
	}
	return raw, nil
}
