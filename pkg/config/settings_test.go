package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := s.RefreshInterval(); got != 300*time.Second {
		t.Errorf("default refresh interval: expected 300s, got %v", got)
	}
	if got := s.RetentionDays(); got != 7 {
		t.Errorf("default retention: expected 7 days, got %d", got)
	}
	if got := s.AlertThreshold(); got != 20 {
		t.Errorf("default alert threshold: expected 20, got %v", got)
	}
	if got := s.StoreBackend(); got != "sqlite" {
		t.Errorf("default backend: expected sqlite, got %q", got)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotawatch.yaml")
	content := `
refresh:
  interval_seconds: 60
history:
  retention_days: 3
store:
  backend: redis
  redis_addr: "10.0.0.5:6379"
accounts:
  - id: gh-main
    platform_type: github
    display_name: Main GitHub
    enabled: true
    config:
      token: secret
  - id: oa-dev
    platform_type: openai
    enabled: false
    config:
      api_key: sk-test
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := s.RefreshInterval(); got != 60*time.Second {
		t.Errorf("expected 60s interval, got %v", got)
	}
	if got := s.RetentionDays(); got != 3 {
		t.Errorf("expected 3-day retention, got %d", got)
	}
	if got := s.StoreBackend(); got != "redis" {
		t.Errorf("expected redis backend, got %q", got)
	}
	if got := s.RedisAddr(); got != "10.0.0.5:6379" {
		t.Errorf("unexpected redis addr: %q", got)
	}

	records, err := s.Accounts()
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(records))
	}
	if records[0].ID != "gh-main" || records[0].PlatformType != "github" || !records[0].Enabled {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if token, _ := records[0].Config["token"].(string); token != "secret" {
		t.Errorf("expected config map to carry the token, got %+v", records[0].Config)
	}
	if records[1].Enabled {
		t.Error("second record must be disabled")
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoad_NoAccountsKey(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	records, err := s.Accounts()
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no accounts, got %d", len(records))
	}
}
