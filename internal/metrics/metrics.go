// Package metrics holds the gateway's Prometheus collectors. The verification
// endpoint is read-only on the session store; these counters are the only
// state it touches besides the lookup itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VerifyRequests counts auth_request subrequests by outcome
	// ("authorized" or "denied").
	VerifyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "verify_requests_total",
		Help:      "Verification subrequests handled, by result.",
	}, []string{"result"})

	// LoginsInitiated counts pending logins successfully created.
	LoginsInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "logins_initiated_total",
		Help:      "Login flows started.",
	})

	// LoginsCompleted counts callback flows that produced a session.
	LoginsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "logins_completed_total",
		Help:      "Login flows that ended with a session being issued.",
	})

	// LoginsFailed counts failed login flows by coarse reason. Reasons stay
	// coarse on purpose; detail goes to the server log only.
	LoginsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "logins_failed_total",
		Help:      "Login flows that failed, by reason.",
	}, []string{"reason"})

	// SweepRemoved counts records removed by the background sweeper.
	SweepRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Name:      "sweep_removed_total",
		Help:      "Expired records removed by the sweeper, by store.",
	}, []string{"store"})
)
