package graph

import (
	"context"
	"fmt"
)

// Decision is the set of labels a router picked. A single label is a
// sequential transition, several labels fan out in parallel.
type Decision []string

// Route picks exactly one label.
func Route(label string) Decision {
	return Decision{label}
}

// Fanout picks every given label; the targets run concurrently in the next round.
func Fanout(labels ...string) Decision {
	return Decision(labels)
}

// Router chooses the outgoing labels of a node from the merged state of the round.
// Routers must be pure: the same state always yields the same decision.
type Router func(ctx context.Context, state State) (Decision, error)

// conditionalEdge maps router labels to target nodes.
type conditionalEdge struct {
	router Router
	labels map[string]string
}

// resolve runs the router and maps its labels to target nodes, keeping the
// order of the decision and dropping repeated targets.
func (c conditionalEdge) resolve(ctx context.Context, from string, state State) ([]string, error) {
	decision, err := c.router(ctx, state.Clone())
	if err != nil {
		return nil, &NodeError{Node: from, Err: fmt.Errorf("router: %w", err)}
	}
	if len(decision) == 0 {
		return nil, &NodeError{Node: from, Err: ErrEmptyDecision}
	}
	targets := make([]string, 0, len(decision))
	seen := make(map[string]bool, len(decision))
	for _, label := range decision {
		to, ok := c.labels[label]
		if !ok {
			return nil, &NodeError{Node: from, Err: fmt.Errorf("%w: %q", ErrUnknownLabel, label)}
		}
		if seen[to] {
			continue
		}
		seen[to] = true
		targets = append(targets, to)
	}
	return targets, nil
}
