package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/edugen/edugen"
)

const (
	traceScope = "edugen"
)

// TraceOption defines options for tracing middleware
type TraceOption func(*tracing)

// tracing holds configuration for the model tracing middleware
type tracing struct {
	system string // e.g., "openai", "gemini"
	tracer trace.Tracer
}

// WithSystem sets the AI system name for tracing, e.g., "openai", "gemini"
func WithSystem(system string) TraceOption {
	return func(t *tracing) {
		t.system = system
	}
}

// WithTracerProvider sets a custom TracerProvider for the tracing middleware
func WithTracerProvider(tr trace.TracerProvider) TraceOption {
	return func(t *tracing) {
		t.tracer = tr.Tracer(traceScope)
	}
}

func newTracing(opts ...TraceOption) *tracing {
	t := &tracing{
		system: "_OTHER",
		tracer: otel.GetTracerProvider().Tracer(traceScope),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Tracing returns a middleware that records a gen_ai chat span for every generation.
func Tracing(opts ...TraceOption) edugen.Middleware {
	t := newTracing(opts...)
	return func(next edugen.ModelProvider) edugen.ModelProvider {
		return edugen.ModelFunc(func(ctx context.Context, req *edugen.ModelRequest, opts ...edugen.ModelOption) (*edugen.ModelResponse, error) {
			ctx, span := t.startChat(ctx, req, edugen.ApplyModelOptions(opts...))
			res, err := next.Generate(ctx, req, opts...)
			t.end(span, err)
			return res, err
		})
	}
}

func (t *tracing) startChat(ctx context.Context, req *edugen.ModelRequest, mo edugen.ModelOptions) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, "chat "+req.Model, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		semconv.GenAIOperationNameChat,
		semconv.GenAISystemKey.String(t.system),
		semconv.GenAIRequestModel(req.Model),
	)
	if mo.Temperature != nil {
		span.SetAttributes(semconv.GenAIRequestTemperature(*mo.Temperature))
	}
	if mo.TopP > 0 {
		span.SetAttributes(semconv.GenAIRequestTopP(mo.TopP))
	}
	if mo.MaxOutputTokens > 0 {
		span.SetAttributes(semconv.GenAIRequestMaxTokens(int(mo.MaxOutputTokens)))
	}
	if mo.JSON {
		span.SetAttributes(semconv.GenAIOutputTypeJSON)
	}
	return ctx, span
}

// tracedEmbedder records a gen_ai embeddings span per call.
type tracedEmbedder struct {
	*tracing
	next  edugen.Embedder
	model string
}

// TraceEmbedder wraps an Embedder so every call records a gen_ai embeddings span.
func TraceEmbedder(next edugen.Embedder, model string, opts ...TraceOption) edugen.Embedder {
	return &tracedEmbedder{tracing: newTracing(opts...), next: next, model: model}
}

// Embed implements edugen.Embedder.
func (e *tracedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := e.tracer.Start(ctx, "embeddings "+e.model, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		semconv.GenAIOperationNameEmbeddings,
		semconv.GenAISystemKey.String(e.system),
		semconv.GenAIRequestModel(e.model),
	)
	vectors, err := e.next.Embed(ctx, texts)
	e.end(span, err)
	return vectors, err
}

func (t *tracing) end(span trace.Span, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, codes.Ok.String())
	}
}
