package otel

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/edugen/edugen"
)

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	provider := Tracing(WithSystem("gemini"), WithTracerProvider(tp))(edugen.ModelFunc(
		func(context.Context, *edugen.ModelRequest, ...edugen.ModelOption) (*edugen.ModelResponse, error) {
			return &edugen.ModelResponse{Messages: []*edugen.Message{edugen.AssistantMessage("ok")}}, nil
		}))
	_, err := provider.Generate(context.Background(), &edugen.ModelRequest{Model: "gemini-2.5-flash"}, edugen.Temperature(0), edugen.JSONOutput())
	if err != nil {
		t.Fatal(err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if got := spans[0].Name(); got != "chat gemini-2.5-flash" {
		t.Errorf("span name = %q", got)
	}
	a := attrs(spans[0])
	if got := a["gen_ai.system"].AsString(); got != "gemini" {
		t.Errorf("gen_ai.system = %q", got)
	}
	if got, ok := a["gen_ai.request.temperature"]; !ok || got.AsFloat64() != 0 {
		t.Errorf("gen_ai.request.temperature = %v, %v", got, ok)
	}
	if got := a["gen_ai.output.type"].AsString(); got != "json" {
		t.Errorf("gen_ai.output.type = %q", got)
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("status = %v", spans[0].Status())
	}
}

func TestTraceEmbedderError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	embedder := TraceEmbedder(embedFunc(func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("quota")
	}), "gemini-embedding-001", WithTracerProvider(tp))
	if _, err := embedder.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v", spans[0].Status())
	}
	if got := attrs(spans[0])["gen_ai.operation.name"].AsString(); got != "embeddings" {
		t.Errorf("gen_ai.operation.name = %q", got)
	}
}

type embedFunc func(context.Context, []string) ([][]float32, error)

func (f embedFunc) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return f(ctx, texts)
}
