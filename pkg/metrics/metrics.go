package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AuthOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "taskory", Name: "auth_outcomes_total", Help: "Number of auth decisions by outcome (authenticated, unauthenticated, forbidden, public)."},
		[]string{"outcome"},
	)
	UserSyncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "taskory", Name: "user_sync_failures_total", Help: "Number of swallowed best-effort user sync failures."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "taskory", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "taskory", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(AuthOutcomes)
	reg.MustRegister(UserSyncFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
