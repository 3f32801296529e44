package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
)

var errRetryableStatus = errors.New("retryable response status")

// RetryingExecutor retries transport failures and 429/5xx responses with exponential back-off.
// It is opt-in: the API client itself never retries.
type RetryingExecutor struct {
	next             Executor
	maxRetryAttempts uint
	delay            time.Duration
}

func NewRetryingExecutor(next Executor, retryAttempts uint, delay time.Duration) *RetryingExecutor {
	return &RetryingExecutor{
		next:             next,
		maxRetryAttempts: retryAttempts,
		delay:            delay,
	}
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func (executor *RetryingExecutor) options(ctx context.Context, request Request) []retry.Option {
	options := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(executor.maxRetryAttempts + 1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Info("Retrying request",
				"attempt", n+1,
				"method", request.Method,
				"url", request.URL,
				"error", err)
		}),
	}
	if executor.delay > 0 {
		options = append(options, retry.Delay(executor.delay))
	}
	return options
}

// Execute implements Executor.
func (executor *RetryingExecutor) Execute(ctx context.Context, request Request) (*Response, error) {
	if executor.maxRetryAttempts == 0 {
		return executor.next.Execute(ctx, request)
	}

	var result *Response
	var attempt uint
	err := retry.Do(
		func() error {
			attempt++
			response, err := executor.next.Execute(ctx, request)
			if err != nil {
				return err
			}
			result = response
			if isRetryableStatus(response.Status) && attempt <= executor.maxRetryAttempts {
				return fmt.Errorf("status %d: %w", response.Status, errRetryableStatus)
			}
			return nil
		},
		executor.options(ctx, request)...,
	)
	if err != nil {
		if errors.Is(err, errRetryableStatus) && result != nil {
			return result, nil
		}
		return nil, err
	}
	return result, nil
}

// Stream implements Executor. Only the request is retried; once a body is handed out it is never replayed.
func (executor *RetryingExecutor) Stream(ctx context.Context, request Request) (*StreamResponse, error) {
	if executor.maxRetryAttempts == 0 {
		return executor.next.Stream(ctx, request)
	}

	var result *StreamResponse
	var attempt uint
	err := retry.Do(
		func() error {
			attempt++
			response, err := executor.next.Stream(ctx, request)
			if err != nil {
				return err
			}
			if isRetryableStatus(response.Status) && attempt <= executor.maxRetryAttempts {
				_ = response.Body.Close()
				return fmt.Errorf("status %d: %w", response.Status, errRetryableStatus)
			}
			result = response
			return nil
		},
		executor.options(ctx, request)...,
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
