package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/edugen/edugen"
	"github.com/edugen/edugen/graph"
	"github.com/edugen/edugen/retriever"
)

var (
	// ErrNoContentRequest is recorded when the prompt asks for nothing the workflow can produce.
	ErrNoContentRequest = errors.New("no content request in prompt")
	// ErrMissingRequirements is returned by nodes that run before requirements exist.
	ErrMissingRequirements = errors.New("requirements not extracted")
)

func (w *Workflow) extractRequirements(ctx context.Context, state graph.State) (graph.State, error) {
	prompt, _ := graph.Get[string](state, KeyPrompt)
	p, err := edugen.NewPromptTemplate().
		System(extractSystem, map[string]any{"categories": w.categories}).
		User(extractUser, map[string]any{"prompt": prompt}).
		Build()
	if err != nil {
		return nil, err
	}
	req, err := w.extractor.Generate(ctx, p, w.modelOptions...)
	if err != nil {
		return nil, fmt.Errorf("extract requirements: %w", err)
	}
	req.ContentRequests = compactRequests(req.ContentRequests)
	if len(req.ContentRequests) == 0 {
		return nil, ErrNoContentRequest
	}
	w.nodeLogger(ctx).InfoContext(ctx, "requirements extracted",
		slog.String("school_level", req.SchoolLevel),
		slog.String("grade", req.Grade),
		slog.String("subject", req.Subject),
		slog.String("domain", req.Domain),
		slog.Any("content_requests", req.ContentRequests),
	)
	return graph.State{KeyRequirements: req}, nil
}

// compactRequests drops repeated categories, keeping first-seen order.
func compactRequests(in []ContentRequest) []ContentRequest {
	out := make([]ContentRequest, 0, len(in))
	for _, c := range in {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func (w *Workflow) retrieve(ctx context.Context, state graph.State) (graph.State, error) {
	req, ok := graph.Get[Requirements](state, KeyRequirements)
	if !ok {
		return nil, ErrMissingRequirements
	}
	attempts, _ := graph.Get[int](state, KeyRetrievalAttempts)
	metadata := req.Metadata()
	docs, err := w.retriever.Retrieve(ctx, metadata, w.topK)
	if err != nil {
		return nil, err
	}
	w.nodeLogger(ctx).InfoContext(ctx, "documents retrieved",
		slog.String("metadata", metadata),
		slog.Int("count", len(docs)),
		slog.Int("attempt", attempts+1),
	)
	return graph.State{
		KeyMetadata:          metadata,
		KeyRetrievedDocs:     docs,
		KeyRetrievalAttempts: attempts + 1,
	}, nil
}

func (w *Workflow) grade(ctx context.Context, state graph.State) (graph.State, error) {
	metadata, _ := graph.Get[string](state, KeyMetadata)
	docs, _ := graph.Get[[]retriever.Document](state, KeyRetrievedDocs)
	eval, err := w.grader.Evaluate(ctx, metadata, docs)
	if err != nil {
		return nil, fmt.Errorf("grade documents: %w", err)
	}
	score := eval.BinaryScore()
	if attempts, _ := graph.Get[int](state, KeyRetrievalAttempts); !eval.Pass && w.maxRetrievals > 0 && attempts >= w.maxRetrievals {
		return nil, fmt.Errorf(noDocumentsReason, attempts)
	}
	return graph.State{KeyBinaryScore: score}, nil
}

func (w *Workflow) generateLearningGoals(ctx context.Context, state graph.State) (graph.State, error) {
	text, err := w.generate(ctx, state, learningGoalsUser)
	if err != nil {
		return nil, err
	}
	return graph.State{KeyGoalState: graph.Success(text)}, nil
}

func (w *Workflow) generateProblems(ctx context.Context, state graph.State) (graph.State, error) {
	text, err := w.generate(ctx, state, problemsUser)
	if err != nil {
		return nil, err
	}
	return graph.State{KeyProblemState: graph.Success(text)}, nil
}

func (w *Workflow) generate(ctx context.Context, state graph.State, tmpl string) (string, error) {
	req, ok := graph.Get[Requirements](state, KeyRequirements)
	if !ok {
		return "", ErrMissingRequirements
	}
	docs, _ := graph.Get[[]retriever.Document](state, KeyRetrievedDocs)
	p, err := edugen.NewPromptTemplate().User(tmpl, map[string]any{
		"school_level": req.SchoolLevel,
		"grade":        req.Grade,
		"subject":      req.Subject,
		"domain":       req.Domain,
		"docs":         docs,
	}).Build()
	if err != nil {
		return "", err
	}
	res, err := w.model.Generate(ctx, &edugen.ModelRequest{Model: w.modelName, Messages: p.Messages}, w.modelOptions...)
	if err != nil {
		return "", err
	}
	text := res.Text()
	if text == "" {
		return "", edugen.ErrEmptyResponse
	}
	return text, nil
}

func (w *Workflow) consolidate(ctx context.Context, state graph.State) (graph.State, error) {
	req, _ := graph.Get[Requirements](state, KeyRequirements)
	parts := []string{fmt.Sprintf(responseHeader, req.SchoolLevel, req.Grade, req.Subject, req.Domain)}
	if goals := resultText(state, KeyGoalState); goals != "" {
		parts = append(parts, goalsSection+goals)
	}
	if problems := resultText(state, KeyProblemState); problems != "" {
		parts = append(parts, problemsSection+problems)
	}
	w.nodeLogger(ctx).InfoContext(ctx, "response consolidated")
	return graph.State{KeyFinalResponse: strings.Join(parts, "\n")}, nil
}

func resultText(state graph.State, key string) string {
	sub, ok := graph.SubStateOf(state, key)
	if !ok || sub.Failed() {
		return ""
	}
	text, _ := sub.Result.(string)
	return text
}

func (w *Workflow) handleError(ctx context.Context, state graph.State) (graph.State, error) {
	var b strings.Builder
	b.WriteString(errorHeader)
	for _, e := range errorLabels {
		if sub, ok := graph.SubStateOf(state, e.key); ok && sub.Failed() {
			fmt.Fprintf(&b, "%s: %s\n", e.label, sub.Error)
		}
	}
	w.nodeLogger(ctx).WarnContext(ctx, "workflow finished with errors")
	return graph.State{KeyFinalResponse: b.String()}, nil
}

// nodeLogger tags records with the node invocation when the executor set one.
func (w *Workflow) nodeLogger(ctx context.Context) *slog.Logger {
	if node, ok := graph.FromNodeContext(ctx); ok {
		return w.logger.With(slog.Any("node", node))
	}
	return w.logger
}
