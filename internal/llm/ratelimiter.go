package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider throttles an underlying Provider to a fixed number
// of requests per minute. The budget starts full, so short bursts go
// through without waiting.
type RateLimitedProvider struct {
	provider Provider
	rpm      int

	mu      sync.Mutex
	budget  float64
	updated time.Time
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		budget:   float64(rpm),
		updated:  time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// acquire blocks until a request slot is available or ctx ends.
func (r *RateLimitedProvider) acquire(ctx context.Context) error {
	for {
		if r.tryTake() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (r *RateLimitedProvider) tryTake() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.budget += now.Sub(r.updated).Minutes() * float64(r.rpm)
	if r.budget > float64(r.rpm) {
		r.budget = float64(r.rpm)
	}
	r.updated = now

	if r.budget < 1 {
		return false
	}
	r.budget--
	return true
}
