// Package metrics defines and registers all custom Prometheus metrics for
// the access-control API. It is the single source of truth for metric names,
// labels, and help strings; request-level metrics come from the
// echoprometheus middleware registered in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "access"

// LoginsTotal counts login evaluations by typed outcome.
// Label:
//   - outcome: "success", "invalid_credential", "locked_out",
//     "inactive_account", "role_mismatch", "unknown_identity",
//     "backend_unavailable"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login evaluations, by outcome.",
	},
	[]string{"outcome"},
)

// LockoutsTotal counts login attempts rejected while a lockout was active,
// including the attempt that triggered the lock.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of login attempts rejected due to an active lockout.",
	},
)

// LoginDuration measures one login evaluation end-to-end, including the
// persistence of the lockout transition.
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of login evaluation from request to persisted outcome.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// DirectoryOpsTotal counts directory mutations and reads.
// Labels:
//   - op: "list", "search", "get", "create", "update", "delete", "change_password"
//   - result: "ok", "denied", "conflict", "invalid", "not_found", "error"
var DirectoryOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_ops_total",
		Help:      "Total number of account directory operations, by operation and result.",
	},
	[]string{"op", "result"},
)
