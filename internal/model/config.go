package model

import "time"

// RiskThreshold is the monetary cutoff (in currency units) separating
// auto-accepted losses from claims requiring VP authorization. It drives
// both the high-risk queue filter and the act stage's auto-approval rule
// and must never be duplicated elsewhere.
const RiskThreshold = 500.0

// Config holds the complete triage configuration
type Config struct {
	// Threshold is the high-risk cutoff. Defaults to RiskThreshold.
	Threshold float64 `yaml:"threshold"`

	Ledger      LedgerConfig      `yaml:"ledger"`
	Checkpoint  CheckpointConfig  `yaml:"checkpoint"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// LedgerConfig configures the audit ledger file
type LedgerConfig struct {
	Path string `yaml:"path"` // CSV path, created with header on first append
}

// CheckpointConfig configures stage checkpoint persistence
type CheckpointConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"` // One JSON file per claim ID
}

// LLMConfig configures the evidence evaluator / drafting provider
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, ollama
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`

	Timeout   time.Duration `yaml:"timeout"`    // Per external call
	MaxTokens int           `yaml:"max_tokens"` // Response cap
}

// ConcurrencyConfig bounds batch processing
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`             // Parallel claim runs
	RequestsPerSecond float64 `yaml:"requests_per_second"` // LLM call rate
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls reporting
type OutputConfig struct {
	Verbose  bool   `yaml:"verbose"`
	JSONPath string `yaml:"json_path,omitempty"` // Optional batch report
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Threshold: RiskThreshold,
		Ledger: LedgerConfig{
			Path: "audit_report.csv",
		},
		Checkpoint: CheckpointConfig{
			Enabled: true,
			Dir:     ".clawback/checkpoints",
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   30 * time.Second,
			MaxTokens: 1000,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Output: OutputConfig{},
	}
}
