package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"time"
)

// END is the terminal marker. Routing to END finishes a branch.
const END = "__end__"

// Option configures the Graph behavior.
type Option func(*Graph)

// WithMiddleware sets a global middleware applied to all node handlers.
func WithMiddleware(ms ...Middleware) Option {
	return func(g *Graph) {
		g.middlewares = ms
	}
}

// WithMaxRounds bounds the number of rounds a single run may take.
// Zero, the default, leaves cycles unbounded.
func WithMaxRounds(n int) Option {
	return func(g *Graph) {
		g.maxRounds = n
	}
}

// WithMaxConcurrency limits how many nodes of one fan-out round run at once.
// Zero means no limit.
func WithMaxConcurrency(n int) Option {
	return func(g *Graph) {
		g.maxConcurrency = n
	}
}

// WithMergePolicy selects how parallel partial states are folded. Defaults to MergeStrict.
func WithMergePolicy(p MergePolicy) Option {
	return func(g *Graph) {
		g.mergePolicy = p
	}
}

// WithLogger sets the logger used by executors compiled from the graph.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NodeOption configures a node when it is registered.
type NodeOption func(*node)

// WithOwnedKey sets the state key that receives the node's failure envelope.
// Defaults to the node name.
func WithOwnedKey(key string) NodeOption {
	return func(n *node) {
		n.ownedKey = key
	}
}

// WithNodeMiddleware wraps only this node's handler, inside the graph middlewares.
func WithNodeMiddleware(ms ...Middleware) NodeOption {
	return func(n *node) {
		n.middlewares = append(n.middlewares, ms...)
	}
}

// WithNodeTimeout gives the handler a context deadline. The executor still waits
// for the handler to return; the deadline is for the collaborator to honor.
func WithNodeTimeout(d time.Duration) NodeOption {
	return func(n *node) {
		n.timeout = d
	}
}

type node struct {
	name        string
	handler     Handler
	ownedKey    string
	middlewares []Middleware
	timeout     time.Duration
}

// Graph represents a directed graph of processing nodes. Cycles are allowed.
// Builder errors are collected and reported by Compile.
type Graph struct {
	nodes          map[string]*node
	edges          map[string][]string
	conditional    map[string]conditionalEdge
	entryPoint     string
	middlewares    []Middleware
	maxRounds      int
	maxConcurrency int
	mergePolicy    MergePolicy
	logger         *slog.Logger
	errs           []error
}

// NewGraph creates a new empty Graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes:       make(map[string]*node),
		edges:       make(map[string][]string),
		conditional: make(map[string]conditionalEdge),
		mergePolicy: MergeStrict,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// AddNode adds a named node with its handler to the graph.
// Returns the graph for chaining.
func (g *Graph) AddNode(name string, handler Handler, opts ...NodeOption) *Graph {
	switch {
	case name == "" || name == END:
		g.errs = append(g.errs, fmt.Errorf("%w: %q", ErrInvalidNodeName, name))
		return g
	case handler == nil:
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrNilHandler, name))
		return g
	}
	if _, ok := g.nodes[name]; ok {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return g
	}
	n := &node{name: name, handler: handler, ownedKey: name}
	for _, opt := range opts {
		opt(n)
	}
	g.nodes[name] = n
	return g
}

// AddEdge adds a static edge. Several static edges from one node fan out to
// every target. A conditional edge on the same node takes precedence.
// Returns the graph for chaining.
func (g *Graph) AddEdge(from, to string) *Graph {
	for _, existing := range g.edges[from] {
		if existing == to {
			return g
		}
	}
	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge routes from a node through router. The labels map holds
// every label the router may return and the node each label leads to; targets
// may be END. Returns the graph for chaining.
func (g *Graph) AddConditionalEdge(from string, router Router, labels map[string]string) *Graph {
	if _, ok := g.conditional[from]; ok {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateRouter, from))
		return g
	}
	if router == nil || len(labels) == 0 {
		g.errs = append(g.errs, fmt.Errorf("graph: conditional edge from %s needs a router and labels", from))
		return g
	}
	g.conditional[from] = conditionalEdge{router: router, labels: maps.Clone(labels)}
	return g
}

// SetEntryPoint marks a node as the entry point.
// Returns the graph for chaining.
func (g *Graph) SetEntryPoint(start string) *Graph {
	g.entryPoint = start
	return g
}

// validate ensures the graph configuration is correct before compiling.
func (g *Graph) validate() error {
	errs := append([]error(nil), g.errs...)
	if g.entryPoint == "" {
		errs = append(errs, ErrEntryNotSet)
	} else if _, ok := g.nodes[g.entryPoint]; !ok {
		errs = append(errs, fmt.Errorf("%w: entry point %s", ErrNodeNotFound, g.entryPoint))
	}
	for from, targets := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge from %s", ErrNodeNotFound, from))
		}
		for _, to := range targets {
			if !g.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: edge %s -> %s", ErrNodeNotFound, from, to))
			}
		}
	}
	for from, edge := range g.conditional {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: conditional edge from %s", ErrNodeNotFound, from))
		}
		for label, to := range edge.labels {
			if !g.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: label %q of %s -> %s", ErrNodeNotFound, label, from, to))
			}
		}
	}
	return errors.Join(errs...)
}

func (g *Graph) isTarget(name string) bool {
	if name == END {
		return true
	}
	_, ok := g.nodes[name]
	return ok
}

// successors lists every node reachable in one step, static or conditional.
func (g *Graph) successors(name string) []string {
	if edge, ok := g.conditional[name]; ok {
		out := make([]string, 0, len(edge.labels))
		for _, to := range edge.labels {
			out = append(out, to)
		}
		return out
	}
	return g.edges[name]
}

// ensureReachable verifies that some branch starting at the entry node can finish,
// either by routing to END or by reaching a node without outgoing edges.
func (g *Graph) ensureReachable() error {
	queue := []string{g.entryPoint}
	visited := make(map[string]bool, len(g.nodes))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if name == END {
			return nil
		}
		if visited[name] {
			continue
		}
		visited[name] = true
		next := g.successors(name)
		if len(next) == 0 {
			return nil
		}
		queue = append(queue, next...)
	}
	return ErrNoTerminal
}

// Compile validates and compiles the graph into an Executor.
// The executor holds its own copy of the graph, so later changes to g do not affect it.
func (g *Graph) Compile() (*Executor, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	if err := g.ensureReachable(); err != nil {
		return nil, err
	}
	return newExecutor(g), nil
}
