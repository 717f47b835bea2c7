// Package metrics exposes Prometheus collectors for the sales workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanSelections counts plan choices by plan key.
	PlanSelections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "managerbot_plan_selections_total",
		Help: "Number of subscription plan selections, by plan.",
	}, []string{"plan"})

	// ProofsReceived counts payment screenshots forwarded to the administrator.
	ProofsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "managerbot_payment_proofs_total",
		Help: "Number of payment proof photos received from users with a pending plan.",
	})

	// Approvals counts approval attempts by outcome.
	Approvals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "managerbot_approvals_total",
		Help: "Number of approval attempts, by outcome.",
	}, []string{"outcome"})

	// PendingPayments tracks the current size of the pending payment table.
	PendingPayments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "managerbot_pending_payments",
		Help: "Current number of users awaiting manual payment approval.",
	})

	// Subscribers tracks the current number of known subscriber records.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "managerbot_subscribers",
		Help: "Current number of subscriber records in the user store.",
	})
)
