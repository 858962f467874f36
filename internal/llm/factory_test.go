package llm

import (
	"testing"
	"time"

	"github.com/ppiankov/clawback/internal/model"
)

func TestNewProvider_OpenAI(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "openai", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("Expected openai, got %s", provider.Name())
	}
}

func TestNewProvider_Anthropic(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "claude", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "anthropic" {
		t.Errorf("Expected anthropic, got %s", provider.Name())
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if provider.Name() != "ollama" {
		t.Errorf("Expected ollama, got %s", provider.Name())
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "mainframe"})
	if err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestConfigFromModel_Defaults(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{Provider: "openai"})

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout, got %v", cfg.Timeout)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("Expected default max tokens, got %d", cfg.MaxTokens)
	}
}
