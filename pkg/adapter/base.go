package adapter

import "sync"

// Base carries the account identity and the enabled toggle shared by every
// concrete adapter. Concrete adapters embed it and implement IsConfigured and
// FetchUsage themselves.
type Base struct {
	record AccountRecord

	mu      sync.RWMutex
	enabled bool
}

// NewBase builds the shared adapter state from a persisted account record.
func NewBase(record AccountRecord) Base {
	return Base{record: record, enabled: record.Enabled}
}

func (b *Base) ID() string {
	return b.record.ID
}

func (b *Base) PlatformType() string {
	return b.record.PlatformType
}

func (b *Base) DisplayName() string {
	if b.record.DisplayName != "" {
		return b.record.DisplayName
	}
	return b.record.ID
}

func (b *Base) IsEnabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

func (b *Base) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
}

// Config returns a copy of the account's configuration values.
func (b *Base) Config() map[string]any {
	out := make(map[string]any, len(b.record.Config))
	for k, v := range b.record.Config {
		out[k] = v
	}
	return out
}

// ConfigString returns a string-typed config value, "" when absent or not a
// string.
func (b *Base) ConfigString(key string) string {
	v, ok := b.record.Config[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
