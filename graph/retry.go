package graph

import (
	"context"

	"github.com/cenkalti/backoff/v5"
)

// Retry returns a middleware that retries node handlers with exponential backoff.
//
// Parameters:
//
//	attempts: The total number of attempts to execute the handler, including the initial attempt.
//	          For example, attempts=3 means up to 3 tries (1 initial + 2 retries).
//	opts:     Optional backoff.RetryOption values applied after the defaults, so they can
//	          replace the backoff policy or bound the elapsed time.
//
// Behavior:
//   - The same `state` snapshot is passed to the handler on each attempt.
//   - Errors wrapped with backoff.Permanent stop retrying immediately.
//   - When every attempt fails the last error is returned, and the executor turns it
//     into the node's failure envelope.
//
// Example usage:
//
//	g.AddNode("retrieve", retrieve, WithNodeMiddleware(Retry(3,
//	    backoff.WithBackOff(backoff.NewConstantBackOff(200*time.Millisecond)),
//	)))
func Retry(attempts uint, opts ...backoff.RetryOption) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, state State) (State, error) {
			retryOpts := make([]backoff.RetryOption, 0, len(opts)+2)
			retryOpts = append(retryOpts,
				backoff.WithBackOff(backoff.NewExponentialBackOff()),
				backoff.WithMaxTries(attempts),
			)
			retryOpts = append(retryOpts, opts...)
			return backoff.Retry(ctx, func() (State, error) {
				return next(ctx, state)
			}, retryOpts...)
		}
	}
}
