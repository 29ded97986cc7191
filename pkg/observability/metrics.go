// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the gatehouse authentication gate.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// AuthAttemptsTotal counts token authentication attempts by outcome:
	// "authenticated", "no_match", "orphaned" (token whose owner is gone),
	// or "error" (store unreachable).
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_auth_attempts_total",
			Help: "Token authentication attempts",
		},
		[]string{"outcome"},
	)

	// GateDecisionsTotal counts gate decisions: "forwarded" or "redirected".
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_gate_decisions_total",
			Help: "Authentication gate decisions",
		},
		[]string{"outcome"},
	)

	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatehouse_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatehouse_request_duration_seconds",
			Help:    "Request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		GateDecisionsTotal,
		RequestsTotal,
		RequestDuration,
	)
}
