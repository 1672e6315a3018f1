package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPSGATE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.MaxRetries != 2 {
		t.Fatalf("default max retries = %d", cfg.Agent.MaxRetries)
	}
	if cfg.Stream.Topic != "opsgate.audit" {
		t.Fatalf("default topic = %q", cfg.Stream.Topic)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"agent":{"maxRetries":5},"stream":{"enabled":true,"brokers":"localhost:9092"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OPSGATE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.MaxRetries != 5 {
		t.Fatalf("max retries = %d", cfg.Agent.MaxRetries)
	}
	if !cfg.Stream.Enabled || cfg.Stream.Brokers != "localhost:9092" {
		t.Fatalf("stream config not applied: %+v", cfg.Stream)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("OPSGATE_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("OPSGATE_AGENT_MAX_RETRIES", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Agent.MaxRetries != 7 {
		t.Fatalf("env override not applied, max retries = %d", cfg.Agent.MaxRetries)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.DataDir = "/tmp/opsgate-test"
	if cfg.LedgerPath() != "/tmp/opsgate-test/ledger.db" {
		t.Fatalf("ledger path = %q", cfg.LedgerPath())
	}
	if cfg.RecordsPath() != "/tmp/opsgate-test/records.db" {
		t.Fatalf("records path = %q", cfg.RecordsPath())
	}
}
