// Package metrics defines the prometheus instruments for the session core
// and the gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session lifecycle metrics
var (
	// AuthTransitionsTotal tracks session state transitions
	AuthTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_transitions_total",
			Help: "Session state machine transitions by from and to state",
		},
		[]string{"from", "to"},
	)

	// LoginOutcomesTotal tracks login attempts by outcome
	LoginOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_outcomes_total",
			Help: "Login attempts by outcome (success, invalid_credentials, network, busy)",
		},
		[]string{"outcome"},
	)

	// RejectionsReportedTotal counts forced logouts triggered by
	// authorization rejections on authenticated calls
	RejectionsReportedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_rejections_reported_total",
			Help: "Authorization rejections that forced the session to unauthenticated",
		},
	)
)

// Reconciliation metrics
var (
	// ReconciliationsTotal tracks applied/not-applied lookups. The degraded
	// outcome marks fail-open answers after a failed history fetch, keeping
	// them distinguishable from a genuine empty history.
	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Applied-status reconciliations by outcome (applied, not_applied, degraded)",
		},
		[]string{"outcome"},
	)
)

// Upstream client metrics
var (
	// UpstreamRequestsTotal tracks upstream calls by endpoint and result kind
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream service requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	// UpstreamRequestDuration tracks upstream call latency in seconds
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream service request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	// UpstreamBreakerState tracks the circuit breaker state
	// (0=closed, 1=half-open, 2=open)
	UpstreamBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "upstream_breaker_state",
			Help: "Upstream circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Reconciliation outcome label values.
const (
	OutcomeApplied    = "applied"
	OutcomeNotApplied = "not_applied"
	OutcomeDegraded   = "degraded"
)
