package adapter

import (
	"context"
	"time"
)

// AccountRecord is one persisted account as the configuration store hands it
// to us. The registry and factory hold non-owning copies; the configuration
// store remains the source of truth.
type AccountRecord struct {
	ID           string         `json:"id" mapstructure:"id"`
	PlatformType string         `json:"platform_type" mapstructure:"platform_type"`
	DisplayName  string         `json:"display_name" mapstructure:"display_name"`
	Enabled      bool           `json:"enabled" mapstructure:"enabled"`
	Config       map[string]any `json:"config" mapstructure:"config"`
}

// UsageSnapshot is a single observation of an account's remaining quota.
// Immutable once created.
type UsageSnapshot struct {
	Remaining  float64   `json:"remaining"`
	Total      float64   `json:"total"`
	Unit       string    `json:"unit"`
	Percentage float64   `json:"percentage"` // -1 when Total is unknown (absolute balance)
	Timestamp  time.Time `json:"timestamp"`
}

// NewUsageSnapshot builds a snapshot, deriving the percentage from the total.
// A non-positive total means the platform reports an absolute balance; the
// percentage is then the -1 sentinel.
func NewUsageSnapshot(remaining, total float64, unit string, ts time.Time) UsageSnapshot {
	pct := -1.0
	if total > 0 {
		pct = remaining / total * 100
	}
	return UsageSnapshot{
		Remaining:  remaining,
		Total:      total,
		Unit:       unit,
		Percentage: pct,
		Timestamp:  ts,
	}
}

// FetchResult reports the outcome of one poll attempt. All failure is carried
// in Error; FetchUsage never panics and never returns a Go error.
type FetchResult struct {
	Configured bool           `json:"configured"`
	Usage      *UsageSnapshot `json:"usage,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ConfigField describes one entry of an adapter's configuration schema. This
// is declarative data for the configuration UI, not behavior.
type ConfigField struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // "string", "number", "bool"
	Secret   bool   `json:"secret"`
	Required bool   `json:"required"`
}

// Adapter is the polymorphic fetch capability for one account.
type Adapter interface {
	// ID returns the opaque account id this adapter was built for.
	ID() string

	// PlatformType returns the platform type key ("github", "openai", ...).
	PlatformType() string

	// DisplayName returns the user-facing account name.
	DisplayName() string

	// IsConfigured reports whether required credentials are present. It
	// never performs a network call.
	IsConfigured() bool

	// IsEnabled reports the user toggle.
	IsEnabled() bool

	// SetEnabled flips the user toggle.
	SetEnabled(enabled bool)

	// Config returns the adapter's configuration values.
	Config() map[string]any

	// FetchUsage polls the platform for the current usage state.
	FetchUsage(ctx context.Context) FetchResult
}
