// Package metrics defines and registers all custom Prometheus metrics for
// the storefront auth subsystem. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time; the
// embedding application decides whether and where to expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// LoginsTotal counts login attempts by final outcome.
// Label:
//   - outcome: "success", "invalid_credentials", "validation_failed",
//     "server_rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by final outcome.",
	},
	[]string{"outcome"},
)

// FallbackLoginsTotal counts offline fallback verifications attempted while
// the identity backend was unreachable.
// Label:
//   - result: "hit" (cached credential matched) or "miss"
var FallbackLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_fallback_logins_total",
		Help:      "Total number of local credential fallback attempts, by result (hit/miss).",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts by final outcome.
// Label:
//   - outcome: "success", "precondition_failed", "validation_failed",
//     "network_unreachable", "server_rejected"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by final outcome.",
	},
	[]string{"outcome"},
)

// LogoutsTotal counts logouts. The local session always clears; the label
// records how the best-effort remote call went.
// Label:
//   - remote_outcome: "success" or "failure"
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logouts_total",
		Help:      "Total number of logouts, by remote call outcome.",
	},
	[]string{"remote_outcome"},
)
