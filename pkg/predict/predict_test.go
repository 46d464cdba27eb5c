package predict

import (
	"math"
	"testing"
	"time"

	"github.com/quotawatch/quotawatch/pkg/history"
)

func point(ts time.Time, remaining float64) history.DataPoint {
	return history.DataPoint{Timestamp: ts, Remaining: remaining, Total: 100}
}

func TestEstimate_EndToEndExample(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []history.DataPoint{
		point(t0, 100),
		point(t0.AddDate(0, 0, 1), 80),
	}
	now := t0.AddDate(0, 0, 1)

	res := Estimate(series, now)
	if !res.Available {
		t.Fatal("expected an available prediction")
	}
	if res.DailyUsageRate != 20 {
		t.Errorf("expected daily rate 20, got %v", res.DailyUsageRate)
	}
	if res.DaysUntilDepletion != 4 {
		t.Errorf("expected 4 days until depletion, got %v", res.DaysUntilDepletion)
	}
	want := t0.AddDate(0, 0, 5)
	if !res.EstimatedDepletionDate.Equal(want) {
		t.Errorf("expected depletion at %v, got %v", want, res.EstimatedDepletionDate)
	}
}

func TestEstimate_SinglePointIsUnavailable(t *testing.T) {
	now := time.Now()
	res := Estimate([]history.DataPoint{point(now, 100)}, now)
	if res.Available {
		t.Error("one point can never yield a prediction")
	}
}

func TestEstimate_EmptySeriesIsUnavailable(t *testing.T) {
	if res := Estimate(nil, time.Now()); res.Available {
		t.Error("empty series can never yield a prediction")
	}
}

func TestEstimate_NonDecreasingUsageIsUnavailable(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	flat := []history.DataPoint{point(t0, 50), point(t0.AddDate(0, 0, 2), 50)}
	if res := Estimate(flat, t0.AddDate(0, 0, 2)); res.Available {
		t.Error("flat usage must be unavailable, not infinite")
	}

	// Quota topped up mid-window.
	refilled := []history.DataPoint{point(t0, 50), point(t0.AddDate(0, 0, 2), 90)}
	if res := Estimate(refilled, t0.AddDate(0, 0, 2)); res.Available {
		t.Error("replenished usage must be unavailable, not negative")
	}
}

func TestEstimate_SpanBelowMinimumIsUnavailable(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	series := []history.DataPoint{
		point(t0, 100),
		point(t0.Add(30*time.Minute), 90),
	}
	if res := Estimate(series, t0.Add(30*time.Minute)); res.Available {
		t.Error("a series spanning under an hour divides by noise")
	}
}

func TestEstimate_RateIsTimeNormalized(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	// Same start/end remaining, different elapsed time.
	short := []history.DataPoint{point(t0, 100), point(t0.AddDate(0, 0, 1), 60)}
	long := []history.DataPoint{point(t0, 100), point(t0.AddDate(0, 0, 4), 60)}

	shortRes := Estimate(short, t0.AddDate(0, 0, 1))
	longRes := Estimate(long, t0.AddDate(0, 0, 4))
	if !shortRes.Available || !longRes.Available {
		t.Fatal("both series should predict")
	}
	if math.Abs(longRes.DailyUsageRate) >= math.Abs(shortRes.DailyUsageRate) {
		t.Errorf("larger elapsed time must yield a smaller rate: %v vs %v",
			longRes.DailyUsageRate, shortRes.DailyUsageRate)
	}
}

func TestEstimate_InteriorPointsDoNotChangeTheRate(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	endpoints := []history.DataPoint{point(t0, 100), point(t0.AddDate(0, 0, 2), 60)}
	noisy := []history.DataPoint{
		point(t0, 100),
		point(t0.AddDate(0, 0, 1), 95), // far off the endpoint line
		point(t0.AddDate(0, 0, 2), 60),
	}

	a := Estimate(endpoints, t0.AddDate(0, 0, 2))
	b := Estimate(noisy, t0.AddDate(0, 0, 2))
	if a.DailyUsageRate != b.DailyUsageRate {
		t.Errorf("estimator is by endpoints; interior points must not matter: %v vs %v",
			a.DailyUsageRate, b.DailyUsageRate)
	}
}
