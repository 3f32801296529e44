package transport

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedExecutor paces requests sent to the remote API.
type RateLimitedExecutor struct {
	next    Executor
	limiter *rate.Limiter
}

func NewRateLimitedExecutor(next Executor, requestsPerSecond float64) *RateLimitedExecutor {
	return &RateLimitedExecutor{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (executor *RateLimitedExecutor) Execute(ctx context.Context, request Request) (*Response, error) {
	if err := executor.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limiter.Wait() > %w", err)
	}
	return executor.next.Execute(ctx, request)
}

func (executor *RateLimitedExecutor) Stream(ctx context.Context, request Request) (*StreamResponse, error) {
	if err := executor.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("limiter.Wait() > %w", err)
	}
	return executor.next.Stream(ctx, request)
}
