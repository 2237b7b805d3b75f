package evaluate

import (
	"context"

	"github.com/edugen/edugen/retriever"
)

// Score values a grader may give a document.
const (
	ScoreYes = "yes"
	ScoreNo  = "no"
)

// Grade is the structured answer for a single document.
type Grade struct {
	BinaryScore string `json:"binary_score" jsonschema:"Documents are relevant to the question, 'yes' or 'no'" validate:"oneof=yes no"`
}

// Evaluation represents the result of grading a set of retrieved documents.
type Evaluation struct {
	// Pass reports whether the relevant share reached the threshold.
	Pass bool `json:"pass"`
	// Score is the share of relevant documents in [0,1].
	Score    float64  `json:"score"`
	Relevant int      `json:"relevant"`
	Total    int      `json:"total"`
	Grades   []string `json:"grades"`
}

// BinaryScore returns "yes" when the evaluation passed and "no" otherwise.
func (e *Evaluation) BinaryScore() string {
	if e != nil && e.Pass {
		return ScoreYes
	}
	return ScoreNo
}

// Evaluator grades retrieved documents against a question.
type Evaluator interface {
	Evaluate(ctx context.Context, question string, docs []retriever.Document) (*Evaluation, error)
}
