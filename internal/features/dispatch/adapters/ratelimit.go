package adapters

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter paces remote calls with a token bucket of capacity 1,
// so bursts never exceed the configured rate.
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketLimiter creates a limiter allowing rps calls per second.
func NewTokenBucketLimiter(rps float64) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
