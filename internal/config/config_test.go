package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DisplayCurrency != "EUR" {
		t.Errorf("expected EUR default, got %q", cfg.DisplayCurrency)
	}
	if cfg.Model.BlocksPerDay != 144 {
		t.Errorf("expected 144 blocks per day, got %d", cfg.Model.BlocksPerDay)
	}
	if cfg.SnapshotTTL() != 5*time.Minute {
		t.Errorf("expected 5m snapshot TTL, got %s", cfg.SnapshotTTL())
	}
	if cfg.Fetch.MempoolBase == "" {
		t.Error("expected a default mempool endpoint")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solmine.toml")
	content := `
display_currency = "USD"
redis_url = "redis://localhost:6379/0"

[fetch]
mempool_base = "http://localhost:9999"

[model]
pool_fee_rate = 0.01
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DisplayCurrency != "USD" {
		t.Errorf("expected USD, got %q", cfg.DisplayCurrency)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("unexpected redis URL %q", cfg.RedisURL)
	}
	if cfg.Fetch.MempoolBase != "http://localhost:9999" {
		t.Errorf("unexpected mempool base %q", cfg.Fetch.MempoolBase)
	}
	if cfg.Model.PoolFeeRate != 0.01 {
		t.Errorf("expected pool fee 0.01, got %v", cfg.Model.PoolFeeRate)
	}
	// Untouched sections keep their defaults.
	if cfg.Model.BlocksPerDay != 144 {
		t.Errorf("expected default 144 blocks per day, got %d", cfg.Model.BlocksPerDay)
	}
}

func TestLoad_MissingDefaultPathIsFine(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("a missing default config must not error: %v", err)
	}
	if cfg.DisplayCurrency != "EUR" {
		t.Errorf("expected defaults, got %q", cfg.DisplayCurrency)
	}
}

func TestLoad_MissingExplicitPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("an explicit missing path should error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SOLMINE_CURRENCY", "USD")
	t.Setenv("SOLMINE_MEMPOOL_BASE", "http://localhost:1234")

	path := filepath.Join(t.TempDir(), "solmine.toml")
	if err := os.WriteFile(path, []byte(`display_currency = "EUR"`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DisplayCurrency != "USD" {
		t.Errorf("environment should override the file, got %q", cfg.DisplayCurrency)
	}
	if cfg.Fetch.MempoolBase != "http://localhost:1234" {
		t.Errorf("unexpected mempool base %q", cfg.Fetch.MempoolBase)
	}
}

func TestEngineParams_Conversion(t *testing.T) {
	cfg := Default()
	p := cfg.EngineParams()
	if p.AvgBlockInterval != 10*time.Minute {
		t.Errorf("expected 10m block interval, got %s", p.AvgBlockInterval)
	}
	if p.SoloWindow != 365*24*time.Hour {
		t.Errorf("expected one-year solo window, got %s", p.SoloWindow)
	}
	if p.PoolFeeRate.InexactFloat64() != 0.02 {
		t.Errorf("expected pool fee 0.02, got %s", p.PoolFeeRate)
	}
}
