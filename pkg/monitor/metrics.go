package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UsageRemaining tracks the latest remaining quota per account
	UsageRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quotawatch_remaining",
			Help: "Latest remaining quota for an account",
		},
		[]string{"account_id", "platform"},
	)

	// UsageTotal tracks the latest known quota total per account
	UsageTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quotawatch_total",
			Help: "Latest known quota total for an account",
		},
		[]string{"account_id", "platform"},
	)

	// DepletionDays tracks the predicted days until exhaustion
	DepletionDays = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "quotawatch_depletion_days",
			Help: "Predicted days until an account's quota is exhausted",
		},
		[]string{"account_id", "platform"},
	)

	// FetchErrors counts failed poll attempts
	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotawatch_fetch_errors_total",
			Help: "Total number of failed usage fetches",
		},
		[]string{"account_id", "platform"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(UsageRemaining)
	prometheus.MustRegister(UsageTotal)
	prometheus.MustRegister(DepletionDays)
	prometheus.MustRegister(FetchErrors)
}
