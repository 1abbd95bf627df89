// Package metrics defines the custom Prometheus metrics of the jobsheet
// frontend. HTTP server metrics come from the echoprometheus middleware;
// these cover the outbound side: calls to the job-tracker backend and the
// session machinery around them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobsheet"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts requests sent to the backend.
// Labels:
//   - endpoint: logical endpoint name (e.g. "jobs.list", "auth.login")
//   - outcome: "ok", "http_error" or "network_error"
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the job-tracker backend.",
	},
	[]string{"endpoint", "outcome"},
)

// BackendRequestDuration measures a single backend round trip.
// Label:
//   - endpoint: logical endpoint name
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of one round trip to the job-tracker backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// TokenRefreshTotal counts silent token refreshes triggered by a 401.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh attempts, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionStoreErrorsTotal counts failed session store operations.
// Label:
//   - op: "get", "set", "take" or "delete"
var SessionStoreErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_store_errors_total",
		Help:      "Total number of failed session store operations.",
	},
	[]string{"op"},
)

// FlashesTotal counts flash messages by lifecycle event.
// Label:
//   - event: "set" or "delivered"
var FlashesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "flashes_total",
		Help:      "Total number of flash messages queued and delivered.",
	},
	[]string{"event"},
)
