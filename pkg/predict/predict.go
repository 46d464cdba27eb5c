// Package predict estimates when an account's remaining quota reaches zero.
package predict

import (
	"time"

	"github.com/quotawatch/quotawatch/pkg/history"
)

// MinSpan is the minimum elapsed time a series must cover before a rate is
// derived. Anything shorter divides by noise.
const MinSpan = time.Hour

// Result is the depletion estimate for one account. Available is false when
// the series is too short, too dense in time, or usage is not decreasing
// (e.g. the quota was topped up); no rate or date is reported in that case.
type Result struct {
	Available              bool      `json:"available"`
	DailyUsageRate         float64   `json:"daily_usage_rate"`
	DaysUntilDepletion     float64   `json:"days_until_depletion"`
	EstimatedDepletionDate time.Time `json:"estimated_depletion_date"`
}

// Estimate derives a linear consumption rate from the endpoints of the
// retained series and projects the latest remaining value forward from now.
//
// This is deliberately a regression by endpoints, not a least-squares fit
// over the window: it is explainable and needs no tuning. Interior points
// only matter through pruning, which decides what the earliest endpoint is.
func Estimate(series []history.DataPoint, now time.Time) Result {
	if len(series) < 2 {
		return Result{}
	}

	earliest := series[0]
	latest := series[len(series)-1]

	elapsed := latest.Timestamp.Sub(earliest.Timestamp)
	if elapsed < MinSpan {
		return Result{}
	}

	elapsedDays := elapsed.Hours() / 24
	dailyUsageRate := (earliest.Remaining - latest.Remaining) / elapsedDays
	if dailyUsageRate <= 0 {
		// Usage flat or replenished; depletion is undefined.
		return Result{}
	}

	daysUntilDepletion := latest.Remaining / dailyUsageRate
	return Result{
		Available:              true,
		DailyUsageRate:         dailyUsageRate,
		DaysUntilDepletion:     daysUntilDepletion,
		EstimatedDepletionDate: now.Add(time.Duration(daysUntilDepletion * 24 * float64(time.Hour))),
	}
}
