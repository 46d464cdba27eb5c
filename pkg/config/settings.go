// Package config is the settings boundary: a viper-backed view over the
// config file and environment. Getters read the live viper state so interval
// and retention changes take effect on the next scheduling or pruning
// decision without a restart.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/quotawatch/quotawatch/pkg/adapter"
)

const (
	defaultRefreshIntervalSeconds = 300
	defaultRetentionDays          = 7
	defaultAlertThresholdPercent  = 20
	defaultStoreBackend           = "sqlite"
)

// Settings wraps one explicitly constructed viper instance. There is no
// package-level singleton; the daemon builds one at startup and injects the
// read-fresh getters where they are consumed.
type Settings struct {
	v *viper.Viper
}

// Load reads the config file at path (optional; "" means env/defaults only)
// and starts watching it for changes when present.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("QUOTAWATCH")
	v.AutomaticEnv()

	v.SetDefault("refresh.interval_seconds", defaultRefreshIntervalSeconds)
	v.SetDefault("history.retention_days", defaultRetentionDays)
	v.SetDefault("alert.threshold_percent", defaultAlertThresholdPercent)
	v.SetDefault("store.backend", defaultStoreBackend)
	v.SetDefault("store.db_path", "quotawatch.db")
	v.SetDefault("store.redis_addr", "127.0.0.1:6379")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Printf("Config reloaded: %s", e.Name)
		})
		v.WatchConfig()
	}

	return &Settings{v: v}, nil
}

// RefreshInterval returns the poll interval. Zero or negative disables
// automatic scheduling.
func (s *Settings) RefreshInterval() time.Duration {
	return time.Duration(s.v.GetInt("refresh.interval_seconds")) * time.Second
}

// RetentionDays returns the maximum age of a history point in days.
func (s *Settings) RetentionDays() int {
	return s.v.GetInt("history.retention_days")
}

// AlertThreshold returns the low-usage alert percentage. It is consumed by
// presentation only; nothing in the core branches on it.
func (s *Settings) AlertThreshold() float64 {
	return s.v.GetFloat64("alert.threshold_percent")
}

// StoreBackend returns "sqlite" or "redis".
func (s *Settings) StoreBackend() string {
	return s.v.GetString("store.backend")
}

// DBPath returns the SQLite database path.
func (s *Settings) DBPath() string {
	return s.v.GetString("store.db_path")
}

// RedisAddr returns the Redis address for the redis backend.
func (s *Settings) RedisAddr() string {
	return s.v.GetString("store.redis_addr")
}

// Accounts returns the persisted account records.
func (s *Settings) Accounts() ([]adapter.AccountRecord, error) {
	var records []adapter.AccountRecord
	if err := s.v.UnmarshalKey("accounts", &records); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	return records, nil
}
