package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ppiankov/clawback/internal/checkpoint"
	"github.com/ppiankov/clawback/internal/dispute"
	"github.com/ppiankov/clawback/internal/forensic"
	"github.com/ppiankov/clawback/internal/ledger"
	"github.com/ppiankov/clawback/internal/llm"
	"github.com/ppiankov/clawback/internal/model"
	"github.com/ppiankov/clawback/internal/worker"
	"github.com/ppiankov/clawback/internal/workflow"
)

// buildConfig assembles the effective configuration from defaults,
// config file values, and flags.
func buildConfig(ledgerPath, checkpointDir, llmProvider, llmModel string, noCheckpoint bool) (*model.Config, error) {
	cfg := model.DefaultConfig()
	applyViperConfig(cfg)
	cfg.Output.Verbose = verbose

	if ledgerPath != "" {
		cfg.Ledger.Path = ledgerPath
	}
	if checkpointDir != "" {
		cfg.Checkpoint.Dir = checkpointDir
	}
	if noCheckpoint {
		cfg.Checkpoint.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	// API keys come from the environment, never from flags
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// applyViperConfig layers config-file and CLAWBACK_* env values over the
// defaults. Flags are applied afterwards, so the precedence is
// flags > env > file > defaults.
func applyViperConfig(cfg *model.Config) {
	if viper.IsSet("threshold") {
		cfg.Threshold = viper.GetFloat64("threshold")
	}
	if viper.IsSet("ledger.path") {
		cfg.Ledger.Path = viper.GetString("ledger.path")
	}
	if viper.IsSet("checkpoint.enabled") {
		cfg.Checkpoint.Enabled = viper.GetBool("checkpoint.enabled")
	}
	if viper.IsSet("checkpoint.dir") {
		cfg.Checkpoint.Dir = viper.GetString("checkpoint.dir")
	}
	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetDuration("llm.timeout")
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}
	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.requests_per_second") {
		cfg.Concurrency.RequestsPerSecond = viper.GetFloat64("concurrency.requests_per_second")
	}
	if viper.IsSet("concurrency.burst") {
		cfg.Concurrency.Burst = viper.GetInt("concurrency.burst")
	}
}

// buildEngine wires the workflow engine from configuration: LLM
// provider behind a rate limiter, evaluator, drafter, ledger, and
// checkpoint store.
func buildEngine(cfg *model.Config) (*workflow.Engine, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
	limited := worker.NewLimitedProvider(provider, limiter)

	evaluator := forensic.NewLLMEvaluator(limited)
	drafter := dispute.NewLLMDrafter(limited)
	led := ledger.New(cfg.Ledger.Path)

	var cps checkpoint.Store
	if cfg.Checkpoint.Enabled {
		cps = checkpoint.NewDiskStore(cfg.Checkpoint.Dir)
	}

	return workflow.NewEngine(cfg, evaluator, drafter, led, cps), nil
}
