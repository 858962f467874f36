package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/clawback/internal/llm"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	limiter := NewLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("openai") {
			t.Errorf("Expected call %d within burst to be allowed", i)
		}
	}
	if limiter.Allow("openai") {
		t.Error("Expected call beyond burst to be denied")
	}
}

func TestLimiter_IndependentCapabilities(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("openai") {
		t.Error("Expected first openai call to be allowed")
	}
	if !limiter.Allow("anthropic") {
		t.Error("Expected anthropic to have its own budget")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(1, 1)
	limiter.SetRate("ollama", 100, 10)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow("ollama") {
			allowed++
		}
	}
	if allowed != 10 {
		t.Errorf("Expected custom burst of 10, got %d allowed", allowed)
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	limiter.Allow("openai") // Exhaust the burst

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "openai"); err == nil {
		t.Error("Expected Wait to fail when the context expires first")
	}
}

type recordingProvider struct {
	calls int
}

func (p *recordingProvider) Name() string                       { return "recording" }
func (p *recordingProvider) IsAvailable(_ context.Context) bool { return true }
func (p *recordingProvider) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.calls++
	return &llm.CompletionResponse{Text: "ok"}, nil
}

func TestLimitedProvider_DelegatesAfterClearance(t *testing.T) {
	inner := &recordingProvider{}
	limited := NewLimitedProvider(inner, NewLimiter(100, 5))

	resp, err := limited.Complete(context.Background(), llm.CompletionRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Unexpected response: %q", resp.Text)
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 delegated call, got %d", inner.calls)
	}
	if limited.Name() != "recording" {
		t.Errorf("Expected wrapped name, got %s", limited.Name())
	}
}

func TestLimitedProvider_BlockedByContext(t *testing.T) {
	inner := &recordingProvider{}
	limiter := NewLimiter(0.001, 1)
	limiter.Allow("recording") // Exhaust the burst
	limited := NewLimitedProvider(inner, limiter)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := limited.Complete(ctx, llm.CompletionRequest{Prompt: "x"}); err == nil {
		t.Error("Expected rate-limited call to fail on context expiry")
	}
	if inner.calls != 0 {
		t.Errorf("Expected no delegated call, got %d", inner.calls)
	}
}
