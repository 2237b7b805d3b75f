package edugen

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Middleware wraps a ModelProvider and returns a new ModelProvider with additional behavior.
// It is applied in a chain (outermost first) using ChainMiddlewares.
type Middleware func(ModelProvider) ModelProvider

// ChainMiddlewares composes middlewares into one, applying them in order.
// The first middleware becomes the outermost wrapper.
func ChainMiddlewares(mws ...Middleware) Middleware {
	return func(next ModelProvider) ModelProvider {
		h := next
		for i := len(mws) - 1; i >= 0; i-- { // apply in reverse to make mws[0] outermost
			h = mws[i](h)
		}
		return h
	}
}

// Retry returns a middleware that retries failed generations with exponential backoff.
// attempts counts the initial call. Errors wrapped with backoff.Permanent, and
// cancellation of ctx, stop retrying immediately.
func Retry(attempts uint, opts ...backoff.RetryOption) Middleware {
	return func(next ModelProvider) ModelProvider {
		return ModelFunc(func(ctx context.Context, req *ModelRequest, mopts ...ModelOption) (*ModelResponse, error) {
			retryOpts := make([]backoff.RetryOption, 0, len(opts)+2)
			retryOpts = append(retryOpts,
				backoff.WithBackOff(backoff.NewExponentialBackOff()),
				backoff.WithMaxTries(attempts),
			)
			retryOpts = append(retryOpts, opts...)
			return backoff.Retry(ctx, func() (*ModelResponse, error) {
				return next.Generate(ctx, req, mopts...)
			}, retryOpts...)
		})
	}
}

// RateLimit returns a middleware that waits on limiter before every generation.
// One limiter shared by all nodes keeps a run's parallel branches under the provider quota.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next ModelProvider) ModelProvider {
		return ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return next.Generate(ctx, req, opts...)
		})
	}
}

// RequireText returns a middleware that turns an empty answer into ErrEmptyResponse,
// so Retry gets another attempt at it.
func RequireText() Middleware {
	return func(next ModelProvider) ModelProvider {
		return ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
			res, err := next.Generate(ctx, req, opts...)
			if err != nil {
				return nil, err
			}
			if res.Text() == "" {
				return nil, ErrEmptyResponse
			}
			return res, nil
		})
	}
}
