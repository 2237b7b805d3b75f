package graph

import (
	"context"
	"log/slog"
)

type ctxNodeKey struct{}

// NodeContext identifies the node invocation a handler is serving: the node,
// the run it belongs to and the round it runs in.
type NodeContext struct {
	Name  string
	RunID string
	Round int
}

// LogValue groups the invocation under a single log attribute.
func (n *NodeContext) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", n.Name),
		slog.String("run_id", n.RunID),
		slog.Int("round", n.Round),
	)
}

// NewNodeContext returns a copy of ctx carrying node.
func NewNodeContext(ctx context.Context, node *NodeContext) context.Context {
	return context.WithValue(ctx, ctxNodeKey{}, node)
}

// FromNodeContext returns the invocation the executor attached to ctx.
// Handlers called outside an executor get false.
func FromNodeContext(ctx context.Context) (*NodeContext, bool) {
	node, ok := ctx.Value(ctxNodeKey{}).(*NodeContext)
	return node, ok && node != nil
}
