package llm

import (
	"context"
	"errors"
	"net"
)

// IsTimeout reports whether the error came from a deadline or network
// timeout rather than an API-level rejection.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// CompleteWithRetry calls Complete and retries exactly once on timeout.
// The evaluator and drafting calls are the only network-dependent steps
// of a triage run, so a single retry covers transient stalls without
// multiplying cost on hard failures.
func CompleteWithRetry(ctx context.Context, p Provider, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := p.Complete(ctx, req)
	if err == nil || !IsTimeout(err) {
		return resp, err
	}
	if ctx.Err() != nil {
		return nil, err
	}
	return p.Complete(ctx, req)
}
