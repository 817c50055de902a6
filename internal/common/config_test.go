package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Market.GetFreshnessOpen() != 5*time.Second {
		t.Errorf("FreshnessOpen = %v, want 5s", cfg.Market.GetFreshnessOpen())
	}
	if cfg.Market.GetFreshnessClosed() != 12*time.Hour {
		t.Errorf("FreshnessClosed = %v, want 12h", cfg.Market.GetFreshnessClosed())
	}
	if cfg.Sync.GetInterval() != 15*time.Minute {
		t.Errorf("Sync interval = %v, want 15m", cfg.Sync.GetInterval())
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.toml")
	content := `
environment = "production"

[market]
freshness_open = "2s"
freshness_closed = "6h"

[storage]
address = "ws://db.internal:8000/rpc"
namespace = "prod"
database = "folio"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Market.GetFreshnessOpen() != 2*time.Second {
		t.Errorf("FreshnessOpen = %v, want 2s", cfg.Market.GetFreshnessOpen())
	}
	if cfg.Storage.Address != "ws://db.internal:8000/rpc" {
		t.Errorf("Storage.Address = %q", cfg.Storage.Address)
	}
	// Untouched sections keep defaults
	if cfg.Clients.Quotes.RateLimit != 10 {
		t.Errorf("Quotes.RateLimit = %d, want default 10", cfg.Clients.Quotes.RateLimit)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_ENV", "prod")
	t.Setenv("FOLIO_STORAGE_ADDRESS", "ws://env-db:8000/rpc")
	t.Setenv("FOLIO_SYNC_INTERVAL", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if !cfg.IsProduction() {
		t.Error("expected production from FOLIO_ENV")
	}
	if cfg.Storage.Address != "ws://env-db:8000/rpc" {
		t.Errorf("Storage.Address = %q", cfg.Storage.Address)
	}
	if cfg.Sync.GetInterval() != 5*time.Minute {
		t.Errorf("Sync interval = %v, want 5m", cfg.Sync.GetInterval())
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/folio.toml")
	if err != nil {
		t.Fatalf("LoadConfig should skip missing files, got %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development default", cfg.Environment)
	}
}

func TestIsFresh(t *testing.T) {
	if IsFresh(time.Time{}, time.Hour) {
		t.Error("zero time should never be fresh")
	}
	if !IsFresh(time.Now().Add(-time.Second), time.Hour) {
		t.Error("1s-old timestamp should be fresh within 1h TTL")
	}
	if IsFresh(time.Now().Add(-2*time.Hour), time.Hour) {
		t.Error("2h-old timestamp should be stale for 1h TTL")
	}
}

func TestIsFreshAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if !IsFreshAt(now.Add(-3*time.Second), now, 5*time.Second) {
		t.Error("3s-old entry should be fresh for 5s TTL")
	}
	if IsFreshAt(now.Add(-5*time.Second), now, 5*time.Second) {
		t.Error("entry exactly at TTL should be stale")
	}
	if IsFreshAt(time.Time{}, now, 5*time.Second) {
		t.Error("zero time should never be fresh")
	}
}
