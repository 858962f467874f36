package worker

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ppiankov/clawback/internal/llm"
)

// Limiter implements per-capability rate limiting for external calls.
// The evaluator and drafting service are treated as possibly costly,
// non-idempotent endpoints, so batch runs throttle them rather than
// fanning out at pool width.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the named capability may be called
func (l *Limiter) Wait(ctx context.Context, name string) error {
	return l.getLimiter(name).Wait(ctx)
}

// Allow checks if a call is allowed without waiting
func (l *Limiter) Allow(name string) bool {
	return l.getLimiter(name).Allow()
}

// SetRate sets a custom rate limit for a specific capability
func (l *Limiter) SetRate(name string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[name] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) getLimiter(name string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[name]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[name]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[name] = limiter

	return limiter
}

// LimitedProvider wraps an LLM provider with rate limiting, keyed by
// the provider's name.
type LimitedProvider struct {
	llm.Provider
	limiter *Limiter
}

// NewLimitedProvider wraps p so every completion call waits for rate
// limit clearance first.
func NewLimitedProvider(p llm.Provider, limiter *Limiter) *LimitedProvider {
	return &LimitedProvider{Provider: p, limiter: limiter}
}

// Complete waits for clearance and delegates to the wrapped provider
func (p *LimitedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := p.limiter.Wait(ctx, p.Name()); err != nil {
		return nil, err
	}
	return p.Provider.Complete(ctx, req)
}
