package evaluate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/edugen/edugen"
	"github.com/edugen/edugen/retriever"
	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the share of relevant documents needed to pass.
const DefaultThreshold = 0.7

const graderSystem = `You are a grader assessing relevance of a retrieved document to a user question.
It does not need to be a stringent test. The goal is to filter out erroneous retrievals.
If the document contains keyword(s) or semantic meaning related to the user question, grade it as relevant.
Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question.`

const graderUser = "Retrieved document: \n\n {{.document}} \n\n User question: {{.question}}"

// Option configures a Relevance grader.
type Option func(*Relevance)

// WithThreshold sets the pass threshold in (0,1].
func WithThreshold(t float64) Option {
	return func(r *Relevance) {
		if t > 0 && t <= 1 {
			r.threshold = t
		}
	}
}

// WithConcurrency bounds how many documents are graded at once. Zero means no limit.
func WithConcurrency(n int) Option {
	return func(r *Relevance) {
		r.concurrency = n
	}
}

// WithModel sets the model name used for grading requests.
func WithModel(name string) Option {
	return func(r *Relevance) {
		r.model = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Relevance) {
		r.logger = logger
	}
}

// Relevance grades every document with a yes/no model call and passes
// when relevant/total reaches the threshold.
type Relevance struct {
	converter   *edugen.OutputConverter[Grade]
	threshold   float64
	concurrency int
	model       string
	logger      *slog.Logger
}

// NewRelevance creates a new Relevance evaluator.
func NewRelevance(provider edugen.ModelProvider, opts ...Option) (*Relevance, error) {
	r := &Relevance{
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	converter, err := edugen.NewOutputConverter[Grade](provider,
		edugen.WithOutputModel(r.model),
		edugen.WithEnum("binary_score", ScoreYes, ScoreNo),
	)
	if err != nil {
		return nil, err
	}
	r.converter = converter
	return r, nil
}

// Evaluate grades docs against question. A document whose grading call fails
// counts as not relevant; zero documents never pass.
func (r *Relevance) Evaluate(ctx context.Context, question string, docs []retriever.Document) (*Evaluation, error) {
	grades := make([]string, len(docs))
	var eg errgroup.Group
	if r.concurrency > 0 {
		eg.SetLimit(r.concurrency)
	}
	for i, doc := range docs {
		eg.Go(func() error {
			grades[i] = r.grade(ctx, question, doc)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eval := &Evaluation{Total: len(docs), Grades: grades}
	for _, g := range grades {
		if g == ScoreYes {
			eval.Relevant++
		}
	}
	if eval.Total > 0 {
		eval.Score = float64(eval.Relevant) / float64(eval.Total)
		eval.Pass = eval.Score >= r.threshold
	}
	r.logger.InfoContext(ctx, "documents graded",
		slog.Int("relevant", eval.Relevant),
		slog.Int("total", eval.Total),
		slog.String("binary_score", eval.BinaryScore()),
	)
	return eval, nil
}

func (r *Relevance) grade(ctx context.Context, question string, doc retriever.Document) string {
	prompt, err := edugen.NewPromptTemplate().
		System(graderSystem).
		User(graderUser, map[string]any{"document": documentText(doc), "question": question}).
		Build()
	if err != nil {
		r.logger.WarnContext(ctx, "grading prompt", slog.String("basecode", doc.Basecode), slog.Any("error", err))
		return ScoreNo
	}
	g, err := r.converter.Generate(ctx, prompt)
	if err != nil {
		r.logger.WarnContext(ctx, "grading failed", slog.String("basecode", doc.Basecode), slog.Any("error", err))
		return ScoreNo
	}
	return g.BinaryScore
}

func documentText(d retriever.Document) string {
	return strings.Join([]string{d.Basecode, d.Content, d.SchoolLevel, d.Grade, d.Domain, d.Category}, " ")
}
