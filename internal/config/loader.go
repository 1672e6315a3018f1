package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".opsgate"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
// OPSGATE_CONFIG overrides the default ~/.opsgate/config.json.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("OPSGATE_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load reads the config file (if present), applies defaults, then applies
// OPSGATE_* environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	applyDefaults(cfg)

	envconfig.Process("OPSGATE_PATHS", &cfg.Paths)
	envconfig.Process("OPSGATE_AGENT", &cfg.Agent)
	envconfig.Process("OPSGATE_STREAM", &cfg.Stream)
	envconfig.Process("OPSGATE_NOTIFY_SLACK", &cfg.Notify.Slack)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Agent.MaxRetries <= 0 {
		cfg.Agent.MaxRetries = 2
	}
	if cfg.Stream.Topic == "" {
		cfg.Stream.Topic = "opsgate.audit"
	}
	if cfg.Stream.AgentID == "" {
		cfg.Stream.AgentID = "opsgate"
	}
	if cfg.Paths.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Paths.DataDir = filepath.Join(home, ConfigDir)
		}
	}
}

// LedgerPath returns the ledger database path under the data dir.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.DataDir, "ledger.db")
}

// RecordsPath returns the record store database path under the data dir.
func (c *Config) RecordsPath() string {
	return filepath.Join(c.Paths.DataDir, "records.db")
}

// EnsureDataDir creates the data dir if it does not exist.
func (c *Config) EnsureDataDir() error {
	if c.Paths.DataDir == "" {
		return fmt.Errorf("data dir not configured")
	}
	return os.MkdirAll(c.Paths.DataDir, 0755)
}
