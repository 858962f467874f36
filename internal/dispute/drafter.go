package dispute

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/clawback/internal/llm"
)

// ErrDraftUnavailable signals that the drafting service failed. Unlike
// an evaluator failure this is recoverable: filing proceeds with the
// DRAFT_FAILED sentinel instead of a polished letter.
var ErrDraftUnavailable = errors.New("drafting service unavailable")

// Drafter produces dispute-letter text from a claim's evidence
type Drafter interface {
	Draft(ctx context.Context, claimID, evidence string) (string, error)
}

// LLMDrafter implements Drafter on top of an LLM provider
type LLMDrafter struct {
	provider llm.Provider
}

// NewLLMDrafter creates a drafter backed by the given provider
func NewLLMDrafter(provider llm.Provider) *LLMDrafter {
	return &LLMDrafter{provider: provider}
}

// Draft generates dispute documentation for one claim
func (d *LLMDrafter) Draft(ctx context.Context, claimID, evidence string) (string, error) {
	prompt := fmt.Sprintf("Draft a professional dispute for %s using evidence: %s", claimID, evidence)

	resp, err := llm.CompleteWithRetry(ctx, d.provider, llm.CompletionRequest{
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDraftUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrDraftUnavailable)
	}

	return resp.Text, nil
}
