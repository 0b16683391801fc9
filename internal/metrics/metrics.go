// Package metrics exposes Prometheus collectors for vault operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WalletsCreated counts vault records created, by kind
	WalletsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_wallets_created_total",
		Help: "Number of custodial wallets created.",
	}, []string{"kind"})

	// UnlockAttempts counts unlock attempts, by result
	// (success, wrong_password, locked)
	UnlockAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_unlock_attempts_total",
		Help: "Number of wallet unlock attempts.",
	}, []string{"result"})

	// Lockouts counts wallets transitioning to the locked state
	Lockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vault_lockouts_total",
		Help: "Number of wallets locked after repeated failed unlocks.",
	})

	// SpendDecisions counts agent spend authorization outcomes
	SpendDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vault_agent_spend_decisions_total",
		Help: "Number of agent spend authorization decisions.",
	}, []string{"decision"})
)

// Unlock attempt results
const (
	ResultSuccess       = "success"
	ResultWrongPassword = "wrong_password"
	ResultLocked        = "locked"
)

// Spend decision labels
const (
	DecisionAllowed = "allowed"
	DecisionDenied  = "denied"
)

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
