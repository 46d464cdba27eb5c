// Package monitor orchestrates one refresh cycle: fetch every active
// account, record history, recompute predictions, and hand results to
// the presentation side.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/quotawatch/quotawatch/pkg/adapter"
	"github.com/quotawatch/quotawatch/pkg/history"
	"github.com/quotawatch/quotawatch/pkg/predict"
)

// Listener receives per-account results after each refresh. Implementations
// must be safe for concurrent calls; accounts refresh independently.
type Listener interface {
	OnFetchResult(a adapter.Adapter, res adapter.FetchResult)
	OnPrediction(a adapter.Adapter, p predict.Result)
}

// Monitor owns the refresh cycle over a registry, history store, and the
// prediction engine. It is constructed once at startup and injected where
// needed; there are no package-level instances.
type Monitor struct {
	registry *adapter.Registry
	history  *history.Store

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a monitor over the given registry and history store.
func New(registry *adapter.Registry, store *history.Store) *Monitor {
	return &Monitor{registry: registry, history: store}
}

// AddListener subscribes a presentation consumer.
func (m *Monitor) AddListener(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// Registry exposes the underlying registry for surfaces that enumerate
// accounts.
func (m *Monitor) Registry() *adapter.Registry {
	return m.registry
}

// History exposes the underlying history store.
func (m *Monitor) History() *history.Store {
	return m.history
}

// Predict recomputes the depletion estimate for one account from its current
// history.
func (m *Monitor) Predict(accountID string) predict.Result {
	return predict.Estimate(m.history.GetHistory(accountID), time.Now())
}

// RefreshAll runs one refresh cycle: every active adapter is fetched
// concurrently, successful observations are appended to history, and the
// prediction is recomputed per account. One account's failure never blocks
// or fails another; the returned error only summarizes how many fetches
// failed so a manual trigger can surface it.
func (m *Monitor) RefreshAll(ctx context.Context) error {
	active := m.registry.GetActive()

	var wg sync.WaitGroup
	failed := make([]bool, len(active))
	for i, a := range active {
		wg.Add(1)
		go func(i int, a adapter.Adapter) {
			defer wg.Done()
			failed[i] = !m.refreshOne(ctx, a)
		}(i, a)
	}
	wg.Wait()

	failures := 0
	for _, f := range failed {
		if f {
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d account fetches failed", failures, len(active))
	}
	return nil
}

func (m *Monitor) refreshOne(ctx context.Context, a adapter.Adapter) bool {
	res := a.FetchUsage(ctx)
	m.notifyFetch(a, res)

	if !res.Configured {
		return false
	}
	if res.Error != "" {
		log.Printf("Fetch failed for account %s (%s): %s", a.ID(), a.PlatformType(), res.Error)
		FetchErrors.WithLabelValues(a.ID(), a.PlatformType()).Inc()
		return false
	}
	if res.Usage == nil {
		log.Printf("Fetch for account %s returned no usage", a.ID())
		return false
	}

	UsageRemaining.WithLabelValues(a.ID(), a.PlatformType()).Set(res.Usage.Remaining)
	UsageTotal.WithLabelValues(a.ID(), a.PlatformType()).Set(res.Usage.Total)

	if err := m.history.AddDataPoint(ctx, a.ID(), res.Usage.Remaining, res.Usage.Total); err != nil {
		// Persistence trouble degrades history, it does not fail the fetch.
		log.Printf("Failed to record history for account %s: %v", a.ID(), err)
	}

	p := m.Predict(a.ID())
	if p.Available {
		DepletionDays.WithLabelValues(a.ID(), a.PlatformType()).Set(p.DaysUntilDepletion)
	}
	m.notifyPrediction(a, p)
	return true
}

func (m *Monitor) notifyFetch(a adapter.Adapter, res adapter.FetchResult) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, l := range listeners {
		l.OnFetchResult(a, res)
	}
}

func (m *Monitor) notifyPrediction(a adapter.Adapter, p predict.Result) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, l := range listeners {
		l.OnPrediction(a, p)
	}
}
