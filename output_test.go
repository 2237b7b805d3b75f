package edugen

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type gradeAnswer struct {
	BinaryScore string `json:"binary_score" jsonschema:"Relevance of the document, 'yes' or 'no'" validate:"oneof=yes no"`
}

type listAnswer struct {
	Topic    string   `json:"topic" validate:"required"`
	Requests []string `json:"requests"`
}

func fixedModel(text string, seen *ModelRequest) ModelProvider {
	return ModelFunc(func(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
		if seen != nil {
			*seen = *req
		}
		if o := ApplyModelOptions(opts...); !o.JSON {
			return nil, errors.New("json output not requested")
		}
		return &ModelResponse{Messages: []*Message{AssistantMessage(text)}}, nil
	})
}

func TestOutputConverterDecodes(t *testing.T) {
	var seen ModelRequest
	conv, err := NewOutputConverter[gradeAnswer](fixedModel("```json\n{\"binary_score\": \"yes\"}\n```", &seen), WithOutputModel("m"))
	if err != nil {
		t.Fatalf("NewOutputConverter: %v", err)
	}
	got, err := conv.Generate(context.Background(), NewPrompt(UserMessage("grade this")))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.BinaryScore != "yes" {
		t.Errorf("BinaryScore = %q", got.BinaryScore)
	}
	if seen.Model != "m" || len(seen.Messages) != 2 || seen.Messages[0].Role != RoleSystem {
		t.Fatalf("unexpected request: %+v", seen)
	}
	if !strings.Contains(seen.Messages[0].Content, `"binary_score"`) {
		t.Errorf("schema missing from system instruction: %s", seen.Messages[0].Content)
	}
}

func TestOutputConverterRepairsJSON(t *testing.T) {
	conv, err := NewOutputConverter[gradeAnswer](fixedModel(`{"binary_score": "no",}`, nil))
	if err != nil {
		t.Fatalf("NewOutputConverter: %v", err)
	}
	got, err := conv.Generate(context.Background(), NewPrompt(UserMessage("grade this")))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.BinaryScore != "no" {
		t.Errorf("BinaryScore = %q", got.BinaryScore)
	}
}

func TestOutputConverterEnum(t *testing.T) {
	conv, err := NewOutputConverter[listAnswer](
		fixedModel(`{"topic": "집합", "requests": ["문제 생성", "요약"]}`, nil),
		WithEnum("requests", "학습 목표 생성", "문제 생성"),
	)
	if err != nil {
		t.Fatalf("NewOutputConverter: %v", err)
	}
	if !strings.Contains(conv.Schema(), "학습 목표 생성") {
		t.Fatalf("enum missing from schema: %s", conv.Schema())
	}
	_, err = conv.Generate(context.Background(), NewPrompt(UserMessage("x")))
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestOutputConverterUnknownEnumProperty(t *testing.T) {
	if _, err := NewOutputConverter[listAnswer](fixedModel("{}", nil), WithEnum("missing", "a")); err == nil {
		t.Fatal("expected error for unknown property")
	}
}

func TestOutputConverterStructTags(t *testing.T) {
	conv, err := NewOutputConverter[gradeAnswer](fixedModel(`{"binary_score": "maybe"}`, nil))
	if err != nil {
		t.Fatalf("NewOutputConverter: %v", err)
	}
	if _, err := conv.Generate(context.Background(), NewPrompt(UserMessage("x"))); !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("expected ErrInvalidOutput, got %v", err)
	}
}

func TestOutputConverterEmpty(t *testing.T) {
	conv, err := NewOutputConverter[gradeAnswer](fixedModel("   ", nil))
	if err != nil {
		t.Fatalf("NewOutputConverter: %v", err)
	}
	if _, err := conv.Generate(context.Background(), NewPrompt(UserMessage("x"))); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewOutputConverterNilProvider(t *testing.T) {
	if _, err := NewOutputConverter[gradeAnswer](nil); !errors.Is(err, ErrModelProviderRequired) {
		t.Fatalf("expected ErrModelProviderRequired, got %v", err)
	}
}
