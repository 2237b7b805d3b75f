package graph

import (
	"context"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Phase identifies where a run is when an Event is emitted.
type Phase string

const (
	// PhasePending is emitted before a round starts; Frontier holds the nodes about to run.
	PhasePending Phase = "pending"
	// PhaseMerging is emitted after the join barrier; State is merged and Next is routed.
	PhaseMerging Phase = "merging"
	// PhaseTerminal is emitted once, with the final state.
	PhaseTerminal Phase = "terminal"
)

// Event describes the progress of a run.
type Event struct {
	RunID    string
	Round    int
	Phase    Phase
	Frontier []string
	Next     []string
	State    State
}

// Executor represents a compiled graph ready for execution.
// An Executor is immutable and safe for concurrent runs.
type Executor struct {
	entry          string
	nodes          map[string]*compiledNode
	edges          map[string][]string
	conditional    map[string]conditionalEdge
	maxRounds      int
	maxConcurrency int
	mergePolicy    MergePolicy
	logger         *slog.Logger
}

type compiledNode struct {
	name     string
	handler  Handler
	ownedKey string
	timeout  time.Duration
}

func newExecutor(g *Graph) *Executor {
	logger := g.logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Executor{
		entry:          g.entryPoint,
		nodes:          make(map[string]*compiledNode, len(g.nodes)),
		edges:          make(map[string][]string, len(g.edges)),
		conditional:    maps.Clone(g.conditional),
		maxRounds:      g.maxRounds,
		maxConcurrency: g.maxConcurrency,
		mergePolicy:    g.mergePolicy,
		logger:         logger,
	}
	for name, n := range g.nodes {
		handler := n.handler
		// graph middlewares wrap node middlewares
		mws := append(slices.Clone(g.middlewares), n.middlewares...)
		if len(mws) > 0 {
			handler = ChainMiddlewares(mws...)(handler)
		}
		e.nodes[name] = &compiledNode{
			name:     name,
			handler:  handler,
			ownedKey: n.ownedKey,
			timeout:  n.timeout,
		}
	}
	for from, targets := range g.edges {
		e.edges[from] = slices.Clone(targets)
	}
	initMetrics(logger)
	return e
}

// Invoke runs the graph from the entry point until every branch terminates
// and returns the final state. It blocks until the run completes.
func (e *Executor) Invoke(ctx context.Context, seed State) (State, error) {
	var final State
	for event, err := range e.Stream(ctx, seed) {
		if err != nil {
			return nil, err
		}
		if event.Phase == PhaseTerminal {
			final = event.State
		}
	}
	return final, nil
}

// Stream runs the graph and yields an Event at each round boundary. It has the
// same merge and ordering semantics as Invoke. Stopping the iteration early
// abandons the run after the current round.
func (e *Executor) Stream(ctx context.Context, seed State) iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		newTask(e, seed).execute(ctx, yield)
	}
}

// resolve returns the next nodes after name, given the merged state of the round.
// A conditional edge takes precedence over static edges; a node with neither is terminal.
func (e *Executor) resolve(ctx context.Context, name string, state State) ([]string, error) {
	if edge, ok := e.conditional[name]; ok {
		return edge.resolve(ctx, name, state)
	}
	return e.edges[name], nil
}
