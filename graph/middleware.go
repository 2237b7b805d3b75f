package graph

import "context"

// Handler is a node's unit of work. It receives a snapshot of the state and
// returns only the keys it writes; keys it does not return are left untouched.
// A returned error is recorded as a failure envelope under the node's owned key.
type Handler func(ctx context.Context, state State) (State, error)

// Middleware is a function that wraps a Handler with additional functionality.
type Middleware func(Handler) Handler

// ChainMiddlewares composes middlewares into one, applying them in order.
// The first middleware becomes the outermost wrapper.
func ChainMiddlewares(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		h := next
		for i := len(mws) - 1; i >= 0; i-- { // apply in reverse to make mws[0] outermost
			h = mws[i](h)
		}
		return h
	}
}
