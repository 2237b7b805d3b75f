// Package workflow assembles the study-content graph: extract requirements,
// retrieve curriculum standards, grade them, generate learning goals and
// problems in parallel, and consolidate the answer.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/edugen/edugen"
	"github.com/edugen/edugen/evaluate"
	"github.com/edugen/edugen/graph"
	"github.com/edugen/edugen/retriever"
)

const (
	// DefaultMaxRounds bounds the number of graph rounds per run.
	DefaultMaxRounds = 25
	// DefaultMaxRetrievals bounds the retrieve and grade cycle.
	DefaultMaxRetrievals = 3
)

// ErrNoResponse is returned when a run ends without a final response.
var ErrNoResponse = errors.New("workflow: run finished without a response")

// Dependencies are the collaborators the nodes call.
type Dependencies struct {
	Model     edugen.ModelProvider
	Retriever retriever.Retriever
	Grader    evaluate.Evaluator
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithModelName sets the model used for extraction and generation.
func WithModelName(name string) Option {
	return func(w *Workflow) {
		w.modelName = name
	}
}

// WithModelOptions sets request options for every model call, e.g. edugen.Temperature(0).
func WithModelOptions(opts ...edugen.ModelOption) Option {
	return func(w *Workflow) {
		w.modelOptions = opts
	}
}

// WithTopK sets how many documents are retrieved per attempt.
func WithTopK(k int) Option {
	return func(w *Workflow) {
		w.topK = k
	}
}

// WithMaxRounds bounds the number of graph rounds per run. Zero leaves it unbounded.
func WithMaxRounds(n int) Option {
	return func(w *Workflow) {
		w.maxRounds = n
	}
}

// WithMaxRetrievals stops retrying retrieval after n attempts without relevant documents.
// Zero leaves only the round bound.
func WithMaxRetrievals(n int) Option {
	return func(w *Workflow) {
		w.maxRetrievals = n
	}
}

// WithNodeTimeout gives every model-calling node a deadline.
func WithNodeTimeout(d time.Duration) Option {
	return func(w *Workflow) {
		w.nodeTimeout = d
	}
}

// WithGraphOptions passes extra options to the underlying graph.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(w *Workflow) {
		w.graphOptions = append(w.graphOptions, opts...)
	}
}

// WithLogger sets the logger for the workflow and its graph.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// Workflow is a compiled study-content graph. It is safe for concurrent runs.
type Workflow struct {
	model         edugen.ModelProvider
	retriever     retriever.Retriever
	grader        evaluate.Evaluator
	extractor     *edugen.OutputConverter[Requirements]
	categories    []string
	modelName     string
	modelOptions  []edugen.ModelOption
	topK          int
	maxRounds     int
	maxRetrievals int
	nodeTimeout   time.Duration
	graphOptions  []graph.Option
	logger        *slog.Logger
	executor      *graph.Executor
}

// New builds and compiles the workflow.
func New(deps Dependencies, opts ...Option) (*Workflow, error) {
	if deps.Model == nil {
		return nil, edugen.ErrModelProviderRequired
	}
	if deps.Retriever == nil || deps.Grader == nil {
		return nil, errors.New("workflow: retriever and grader are required")
	}
	w := &Workflow{
		model:         deps.Model,
		retriever:     deps.Retriever,
		grader:        deps.Grader,
		topK:          retriever.DefaultTopK,
		maxRounds:     DefaultMaxRounds,
		maxRetrievals: DefaultMaxRetrievals,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.categories = make([]string, len(ContentRequests))
	for i, c := range ContentRequests {
		w.categories[i] = string(c)
	}
	extractor, err := edugen.NewOutputConverter[Requirements](w.model,
		edugen.WithOutputModel(w.modelName),
		edugen.WithEnum("content_requests", w.categories...),
		edugen.WithValidator(newValidator()),
	)
	if err != nil {
		return nil, fmt.Errorf("workflow: requirements schema: %w", err)
	}
	w.extractor = extractor
	if w.executor, err = w.build().Compile(); err != nil {
		return nil, fmt.Errorf("workflow: compile: %w", err)
	}
	return w, nil
}

func (w *Workflow) build() *graph.Graph {
	var timeout []graph.NodeOption
	if w.nodeTimeout > 0 {
		timeout = append(timeout, graph.WithNodeTimeout(w.nodeTimeout))
	}
	opts := append([]graph.Option{
		graph.WithMaxRounds(w.maxRounds),
		graph.WithLogger(w.logger),
	}, w.graphOptions...)

	g := graph.NewGraph(opts...)
	g.AddNode(NodeExtractRequirements, w.extractRequirements, append(timeout, graph.WithOwnedKey(KeyRequirementsState))...)
	g.AddNode(NodeRetrieve, w.retrieve, graph.WithOwnedKey(KeyRetrievalState))
	g.AddNode(NodeGrade, w.grade, graph.WithOwnedKey(KeyGradeState))
	g.AddNode(NodeLearningGoals, w.generateLearningGoals, append(timeout, graph.WithOwnedKey(KeyGoalState))...)
	g.AddNode(NodeProblems, w.generateProblems, append(timeout, graph.WithOwnedKey(KeyProblemState))...)
	g.AddNode(NodeConsolidate, w.consolidate)
	g.AddNode(NodeErrorHandler, w.handleError)

	g.AddConditionalEdge(NodeExtractRequirements, failedRouter(KeyRequirementsState), map[string]string{
		labelNext:    NodeRetrieve,
		labelFailure: NodeErrorHandler,
	})
	g.AddConditionalEdge(NodeRetrieve, failedRouter(KeyRetrievalState), map[string]string{
		labelNext:    NodeGrade,
		labelFailure: NodeErrorHandler,
	})
	g.AddConditionalEdge(NodeGrade, gradeRouter, map[string]string{
		labelGoals:    NodeLearningGoals,
		labelProblems: NodeProblems,
		labelRetry:    NodeRetrieve,
		labelFailure:  NodeErrorHandler,
	})
	branch := map[string]string{
		labelSuccess: NodeConsolidate,
		labelFailure: NodeErrorHandler,
	}
	g.AddConditionalEdge(NodeLearningGoals, branchRouter, branch)
	g.AddConditionalEdge(NodeProblems, branchRouter, branch)
	g.AddEdge(NodeConsolidate, graph.END)
	g.AddEdge(NodeErrorHandler, graph.END)
	g.SetEntryPoint(NodeExtractRequirements)
	return g
}

// Invoke runs the graph with prompt as the seed and returns the final state.
func (w *Workflow) Invoke(ctx context.Context, prompt string) (graph.State, error) {
	return w.executor.Invoke(ctx, graph.State{KeyPrompt: prompt})
}

// Stream runs the graph and yields its round events.
func (w *Workflow) Stream(ctx context.Context, prompt string) iter.Seq2[*graph.Event, error] {
	return w.executor.Stream(ctx, graph.State{KeyPrompt: prompt})
}

// Run executes the workflow and returns the final response text.
func (w *Workflow) Run(ctx context.Context, prompt string) (string, error) {
	state, err := w.Invoke(ctx, prompt)
	if err != nil {
		return "", err
	}
	return FinalResponse(state)
}

// FinalResponse extracts the answer from a terminal state.
func FinalResponse(state graph.State) (string, error) {
	response, ok := graph.Get[string](state, KeyFinalResponse)
	if !ok {
		return "", ErrNoResponse
	}
	return response, nil
}
