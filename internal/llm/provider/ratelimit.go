package provider

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider with a token-bucket limiter so bursts of
// turns cannot exceed the backend's request quota. Wait blocks until a
// token is available or the context is cancelled.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps the provider with a limit of rps requests per
// second and the given burst size.
func NewRateLimited(inner Provider, rps float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// CreateCompletion waits for limiter capacity, then delegates.
func (r *RateLimited) CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.CreateCompletion(ctx, request)
}

// Name returns the wrapped provider's name.
func (r *RateLimited) Name() string {
	return r.inner.Name()
}
