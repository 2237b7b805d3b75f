package graph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// task encapsulates the mutable state for a single graph run.
type task struct {
	executor *Executor
	id       string
	state    State
	round    int
	logger   *slog.Logger
}

func newTask(e *Executor, seed State) *task {
	id := uuid.NewString()
	return &task{
		executor: e,
		id:       id,
		state:    seed.Clone(),
		logger:   e.logger.With(slog.String("run_id", id)),
	}
}

func (t *task) execute(ctx context.Context, yield func(*Event, error) bool) {
	ctx, span := tracer.Start(ctx, "graph.run", trace.WithAttributes(
		attribute.String("graph.run_id", t.id),
		attribute.String("graph.entry", t.executor.entry),
	))
	defer span.End()

	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.Error("run aborted", slog.Int("round", t.round), slog.Any("error", err))
		yield(nil, err)
	}

	start := time.Now()
	t.logger.Debug("run started", slog.String("entry", t.executor.entry))
	frontier := []string{t.executor.entry}
	for len(frontier) > 0 {
		t.round++
		if limit := t.executor.maxRounds; limit > 0 && t.round > limit {
			fail(fmt.Errorf("%w (%d)", ErrMaxRoundsExceeded, limit))
			return
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}
		if !yield(&Event{RunID: t.id, Round: t.round, Phase: PhasePending, Frontier: slices.Clone(frontier)}, nil) {
			return
		}

		partials := t.runRound(ctx, frontier)
		merged, err := mergeRound(t.executor.mergePolicy, t.state, frontier, partials)
		if err != nil {
			fail(err)
			return
		}
		t.state = merged

		next, err := t.route(ctx, frontier)
		if err != nil {
			fail(err)
			return
		}
		t.logger.Debug("round completed",
			slog.Int("round", t.round),
			slog.Any("frontier", frontier),
			slog.Any("next", next),
		)
		if !yield(&Event{
			RunID:    t.id,
			Round:    t.round,
			Phase:    PhaseMerging,
			Frontier: slices.Clone(frontier),
			Next:     slices.Clone(next),
			State:    t.state.Clone(),
		}, nil) {
			return
		}
		frontier = next
	}

	recordRun(ctx, t.round)
	span.SetAttributes(attribute.Int("graph.rounds", t.round))
	span.SetStatus(codes.Ok, "")
	t.logger.Info("run completed", slog.Int("rounds", t.round), slog.Duration("duration", time.Since(start)))
	yield(&Event{RunID: t.id, Round: t.round, Phase: PhaseTerminal, State: t.state.Clone()}, nil)
}

// runRound invokes every frontier node against the same snapshot and waits for
// all of them (join barrier). Results are aligned with frontier.
func (t *task) runRound(ctx context.Context, frontier []string) []State {
	snapshot := t.state.Clone()
	partials := make([]State, len(frontier))
	if len(frontier) == 1 {
		partials[0] = t.runNode(ctx, t.executor.nodes[frontier[0]], snapshot.Clone())
		return partials
	}
	// runNode never returns an error, so no branch cancels its siblings.
	var eg errgroup.Group
	if n := t.executor.maxConcurrency; n > 0 {
		eg.SetLimit(n)
	}
	for i, name := range frontier {
		eg.Go(func() error {
			partials[i] = t.runNode(ctx, t.executor.nodes[name], snapshot.Clone())
			return nil
		})
	}
	_ = eg.Wait()
	return partials
}

// runNode calls the node handler and converts an error or panic into a
// failure envelope under the node's owned key.
func (t *task) runNode(ctx context.Context, n *compiledNode, state State) (partial State) {
	ctx = NewNodeContext(ctx, &NodeContext{Name: n.name, RunID: t.id, Round: t.round})
	ctx, span := tracer.Start(ctx, "graph.node "+n.name, trace.WithAttributes(
		attribute.String("graph.node", n.name),
		attribute.Int("graph.round", t.round),
	))
	start := time.Now()
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			partial = t.failure(ctx, span, n, fmt.Errorf("%w: %v", ErrNodePanic, r))
		}
		recordNode(ctx, n.name, start, isFailure(partial, n.ownedKey))
	}()

	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	out, err := n.handler(ctx, state)
	if err != nil {
		return t.failure(ctx, span, n, err)
	}
	if out == nil {
		return State{}
	}
	return out
}

func (t *task) failure(ctx context.Context, span trace.Span, n *compiledNode, err error) State {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	t.logger.WarnContext(ctx, "node failed",
		slog.String("node", n.name),
		slog.Int("round", t.round),
		slog.Any("error", err),
	)
	return State{n.ownedKey: Failure(err)}
}

func isFailure(partial State, key string) bool {
	sub, ok := SubStateOf(partial, key)
	return ok && sub.Failed()
}

// route resolves the next frontier from every node of the round. Targets are
// de-duplicated in first-seen order, so converging branches run their target once.
func (t *task) route(ctx context.Context, frontier []string) ([]string, error) {
	var next []string
	seen := make(map[string]bool)
	for _, name := range frontier {
		targets, err := t.executor.resolve(ctx, name, t.state)
		if err != nil {
			return nil, err
		}
		for _, to := range targets {
			if to == END || seen[to] {
				continue
			}
			seen[to] = true
			next = append(next, to)
		}
	}
	return next, nil
}
