// Package config provides configuration types and loading for opsgate.
package config

// Config is the root configuration struct.
// Top-level groups: Paths, Agent, Stream, Notify.
type Config struct {
	Paths  PathsConfig  `json:"paths"`
	Agent  AgentConfig  `json:"agent"`
	Stream StreamConfig `json:"stream"`
	Notify NotifyConfig `json:"notify"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	// DataDir holds the ledger and record databases. Defaults to ~/.opsgate.
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
}

// AgentConfig groups orchestration settings.
type AgentConfig struct {
	// MaxRetries bounds the reflection-driven recovery loop per command.
	MaxRetries int `json:"maxRetries" envconfig:"MAX_RETRIES"`
	// LedgerEnabled toggles the durable turn/audit/approval log.
	LedgerEnabled bool `json:"ledgerEnabled" envconfig:"LEDGER_ENABLED"`
}

// StreamConfig configures the optional Kafka audit mirror.
type StreamConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Brokers string `json:"brokers" envconfig:"BROKERS"`
	Topic   string `json:"topic" envconfig:"TOPIC"`
	AgentID string `json:"agentId" envconfig:"AGENT_ID"`
}

// NotifyConfig contains notification channel configurations.
type NotifyConfig struct {
	Slack SlackConfig `json:"slack"`
}

// SlackConfig configures the Slack approval notifier.
type SlackConfig struct {
	Enabled bool   `json:"enabled" envconfig:"ENABLED"`
	Token   string `json:"token" envconfig:"TOKEN"`
	Channel string `json:"channel" envconfig:"CHANNEL"`
}

// DefaultConfig returns a config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxRetries:    2,
			LedgerEnabled: true,
		},
		Stream: StreamConfig{
			Topic:   "opsgate.audit",
			AgentID: "opsgate",
		},
	}
}
