package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes recorded for every proxied call.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"    // upstream answered non-2xx
	OutcomeUnavailable = "unavailable" // transport failure or unreadable body
	OutcomeInvalid     = "invalid"     // refused before reaching upstream
)

var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tconsole_upstream_requests_total",
			Help: "Proxied upstream calls by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tconsole_upstream_request_duration_seconds",
			Help:    "Latency of upstream calls by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tconsole_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter",
		},
	)

	AuditEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tconsole_audit_events_total",
			Help: "Audit events by type and result",
		},
		[]string{"type", "result"}, // tenant.created|tenant.admin_created , published|failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		UpstreamRequests,
		UpstreamDuration,
		RateLimited,
		AuditEvents,
	)
}
