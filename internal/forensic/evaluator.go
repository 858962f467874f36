package forensic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/clawback/internal/llm"
	"github.com/ppiankov/clawback/internal/model"
)

// ErrEvaluatorUnavailable signals that the evidence evaluator call
// failed or returned nothing usable. A run hitting this must halt
// before filing; defaulting to "no violation" would silently forfeit
// recoverable revenue.
var ErrEvaluatorUnavailable = errors.New("evidence evaluator unavailable")

// Verdict is the evaluator's finding for one claim
type Verdict struct {
	ViolationFound bool   `json:"violation_found"`
	Evidence       string `json:"evidence"`
}

// Evaluator analyzes a claim against its governing contract rule
type Evaluator interface {
	Evaluate(ctx context.Context, claim model.DeductionClaim) (*Verdict, error)
}

// LLMEvaluator implements Evaluator on top of an LLM provider
type LLMEvaluator struct {
	provider llm.Provider
}

// NewLLMEvaluator creates an evaluator backed by the given provider
func NewLLMEvaluator(provider llm.Provider) *LLMEvaluator {
	return &LLMEvaluator{provider: provider}
}

const verdictFormat = "VIOLATION: [TRUE/FALSE] | REASON: [Evidence summary]"

// BuildPrompt constructs the forensic analysis prompt for a claim
func BuildPrompt(claim model.DeductionClaim) string {
	return fmt.Sprintf(`Analyze Claim %s ($%.2f).
Retailer Contract Rule: %q
Task: Identify if a 12h delay violates the 48h grace period.
Format: %s`, claim.ClaimID, claim.Amount, claim.ContractText, verdictFormat)
}

// Evaluate runs the forensic analysis for one claim
func (e *LLMEvaluator) Evaluate(ctx context.Context, claim model.DeductionClaim) (*Verdict, error) {
	resp, err := llm.CompleteWithRetry(ctx, e.provider, llm.CompletionRequest{
		System: "You are a forensic deduction auditor. Follow the requested output format exactly.",
		Prompt: BuildPrompt(claim),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEvaluatorUnavailable, err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrEvaluatorUnavailable)
	}

	verdict := ParseVerdict(resp.Text)
	return &verdict, nil
}

// ParseVerdict extracts the verdict from the evaluator's free-text
// response. The upstream capability is not contractually obligated to
// return structured output, so this parse never fails: the verdict is
// true only when the VIOLATION: TRUE token is present, and when the
// REASON: marker is absent the whole response stands in as evidence.
func ParseVerdict(text string) Verdict {
	violation := strings.Contains(strings.ToUpper(text), "VIOLATION: TRUE")

	evidence := text
	if idx := strings.LastIndex(text, "REASON:"); idx >= 0 {
		evidence = text[idx+len("REASON:"):]
	}

	return Verdict{
		ViolationFound: violation,
		Evidence:       strings.TrimSpace(evidence),
	}
}
