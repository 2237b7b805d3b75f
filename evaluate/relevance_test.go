package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/edugen/edugen"
	"github.com/edugen/edugen/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grader answers "yes" for documents whose content contains "분수" and fails for "boom".
// Only the document part of the user message is inspected, never the question.
func grader() edugen.ModelProvider {
	return edugen.ModelFunc(func(_ context.Context, req *edugen.ModelRequest, opts ...edugen.ModelOption) (*edugen.ModelResponse, error) {
		if !edugen.ApplyModelOptions(opts...).JSON {
			return nil, errors.New("expected JSON output")
		}
		document, _, _ := strings.Cut(req.Messages[len(req.Messages)-1].Text(), "User question")
		switch {
		case strings.Contains(document, "boom"):
			return nil, errors.New("model unavailable")
		case strings.Contains(document, "분수"):
			return &edugen.ModelResponse{Messages: []*edugen.Message{edugen.AssistantMessage(`{"binary_score": "yes"}`)}}, nil
		default:
			return &edugen.ModelResponse{Messages: []*edugen.Message{edugen.AssistantMessage("```json\n{\"binary_score\": \"no\"}\n```")}}, nil
		}
	})
}

func docs(contents ...string) []retriever.Document {
	out := make([]retriever.Document, len(contents))
	for i, c := range contents {
		out[i] = retriever.Document{Basecode: "b" + string(rune('0'+i)), Content: c}
	}
	return out
}

func TestRelevanceThreshold(t *testing.T) {
	tests := []struct {
		name     string
		docs     []retriever.Document
		pass     bool
		relevant int
	}{
		{name: "all relevant", docs: docs("분수 A", "분수 B", "분수 C"), pass: true, relevant: 3},
		{name: "two of three", docs: docs("분수 A", "분수 B", "도형"), pass: false, relevant: 2},
		{name: "failed call counts as no", docs: docs("분수 A", "분수 B", "boom"), pass: false, relevant: 2},
		{name: "one of three", docs: docs("분수 A", "도형", "시계"), pass: false, relevant: 1},
		{name: "no documents", docs: nil, pass: false, relevant: 0},
	}
	r, err := NewRelevance(grader(), WithConcurrency(2))
	require.NoError(t, err)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := r.Evaluate(context.Background(), "초등학교 3학년 수학 분수", tt.docs)
			require.NoError(t, err)
			assert.Equal(t, tt.pass, eval.Pass)
			assert.Equal(t, tt.relevant, eval.Relevant)
			assert.Equal(t, len(tt.docs), eval.Total)
			if tt.pass {
				assert.Equal(t, ScoreYes, eval.BinaryScore())
			} else {
				assert.Equal(t, ScoreNo, eval.BinaryScore())
			}
		})
	}
}

func TestRelevanceCustomThreshold(t *testing.T) {
	r, err := NewRelevance(grader(), WithThreshold(0.5))
	require.NoError(t, err)
	eval, err := r.Evaluate(context.Background(), "q", docs("분수 A", "분수 B", "도형"))
	require.NoError(t, err)
	assert.True(t, eval.Pass)
	assert.InDelta(t, 2.0/3.0, eval.Score, 1e-9)
}

func TestRelevanceCanceled(t *testing.T) {
	r, err := NewRelevance(grader())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Evaluate(ctx, "q", docs("분수"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelevanceRequiresProvider(t *testing.T) {
	_, err := NewRelevance(nil)
	assert.ErrorIs(t, err, edugen.ErrModelProviderRequired)
}
