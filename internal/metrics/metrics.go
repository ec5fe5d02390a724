// Package metrics defines the Prometheus collectors exported by ccoach.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccoach_api_requests_total",
			Help: "Total carbon API requests by endpoint and response status",
		},
		[]string{"endpoint", "status"},
	)

	APIRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ccoach_api_request_latency_seconds",
			Help:    "Carbon API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	FetchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccoach_fetch_cycles_total",
			Help: "Resource fetch cycles by outcome (resolved, failed, superseded, disposed)",
		},
		[]string{"resource", "outcome"},
	)

	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccoach_simulations_total",
			Help: "What-if simulations by change type and outcome",
		},
		[]string{"change_type", "outcome"},
	)
)
