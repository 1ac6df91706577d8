// Package metrics defines and registers the custom Prometheus metrics of the
// notes API. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login and registration attempts.
// Labels:
//   - action: "login", "register" or "logout"
//   - result: "success", "invalid" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Note metrics ──────────────────────────────────────────────────────────────

// NoteOperationsTotal counts note mutations.
// Labels:
//   - op: "create", "update" or "delete"
//   - visibility: "public" or "secret" ("unknown" for deletes)
var NoteOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "note_operations_total",
		Help:      "Total number of note mutations, by operation and visibility.",
	},
	[]string{"op", "visibility"},
)

// SecretRevealsTotal counts attempts to unlock secret notes.
// Label:
//   - result: "granted" or "denied"
var SecretRevealsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "secret_reveals_total",
		Help:      "Total number of secret note reveal attempts, by result.",
	},
	[]string{"result"},
)

// ── Invite metrics ────────────────────────────────────────────────────────────

// InvitesIssuedTotal counts invites created by admins.
var InvitesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invites_issued_total",
		Help:      "Total number of invites issued.",
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// RequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the matched route pattern (e.g. "/v1/notes/:slug")
//   - status: response status code
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Visibility maps a secret flag to its label value.
func Visibility(secret bool) string {
	if secret {
		return "secret"
	}
	return "public"
}
