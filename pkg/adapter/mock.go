package adapter

import (
	"context"
	"sync"
	"time"
)

// MockAdapter generates synthetic usage data for tests and the simulator.
// Each fetch burns a fixed amount from the remaining quota.
type MockAdapter struct {
	Base

	mu        sync.Mutex
	remaining float64
	total     float64
	burn      float64
	fetchErr  string
}

// NewMockAdapter builds a mock adapter from a record. Recognized config keys:
// "total" (default 1000) and "burn_per_fetch" (default 10).
func NewMockAdapter(record AccountRecord) (Adapter, error) {
	m := &MockAdapter{
		Base:  NewBase(record),
		total: 1000,
		burn:  10,
	}
	if v, ok := configNumber(record.Config, "total"); ok && v > 0 {
		m.total = v
	}
	if v, ok := configNumber(record.Config, "burn_per_fetch"); ok && v >= 0 {
		m.burn = v
	}
	m.remaining = m.total
	return m, nil
}

// MockConfigSchema describes the mock adapter's configuration fields.
func MockConfigSchema() []ConfigField {
	return []ConfigField{
		{Name: "total", Type: "number"},
		{Name: "burn_per_fetch", Type: "number"},
	}
}

// configNumber reads a numeric config value; decoded YAML/JSON may carry it
// as int or float64.
func configNumber(config map[string]any, key string) (float64, bool) {
	switch v := config[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func (m *MockAdapter) IsConfigured() bool { return true }

// SetRemaining pins the remaining quota, simulating a top-up or drain.
func (m *MockAdapter) SetRemaining(remaining float64) {
	m.mu.Lock()
	m.remaining = remaining
	m.mu.Unlock()
}

// FailWith makes every subsequent fetch report the given error.
func (m *MockAdapter) FailWith(msg string) {
	m.mu.Lock()
	m.fetchErr = msg
	m.mu.Unlock()
}

func (m *MockAdapter) FetchUsage(ctx context.Context) FetchResult {
	if err := ctx.Err(); err != nil {
		return FetchResult{Configured: true, Error: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchErr != "" {
		return FetchResult{Configured: true, Error: m.fetchErr}
	}

	m.remaining -= m.burn
	if m.remaining < 0 {
		m.remaining = 0
	}
	snap := NewUsageSnapshot(m.remaining, m.total, "credits", time.Now())
	return FetchResult{Configured: true, Usage: &snap}
}
