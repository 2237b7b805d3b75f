package edugen

import (
	"context"
)

// ModelOption configures a single request. Providers may ignore options
// they do not support but should prefer best-effort behavior.
type ModelOption func(*ModelOptions)

// ModelOptions holds common request-time controls.
type ModelOptions struct {
	MaxOutputTokens int64
	// Temperature is nil when the provider default should be used.
	Temperature *float64
	TopP        float64
	// JSON asks the provider for a JSON-only response when it supports it.
	JSON bool
}

// ApplyModelOptions folds opts into a ModelOptions value.
func ApplyModelOptions(opts ...ModelOption) ModelOptions {
	var o ModelOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ModelRequest is a chat-style request to the provider.
type ModelRequest struct {
	Model    string     `json:"model"`
	Messages []*Message `json:"messages"`
}

// ModelResponse is the assistant output of a generation.
type ModelResponse struct {
	Messages []*Message `json:"messages"`
}

// Text returns the text of the last message in the response.
func (r *ModelResponse) Text() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Text()
}

// ModelProvider is an interface for chat-style models.
type ModelProvider interface {
	// Generate executes the request and returns a single assistant response.
	Generate(context.Context, *ModelRequest, ...ModelOption) (*ModelResponse, error)
}

// ModelFunc adapts a function to the ModelProvider interface.
// It is especially useful for testing and lightweight adapters.
type ModelFunc func(context.Context, *ModelRequest, ...ModelOption) (*ModelResponse, error)

// Generate calls f.
func (f ModelFunc) Generate(ctx context.Context, req *ModelRequest, opts ...ModelOption) (*ModelResponse, error) {
	return f(ctx, req, opts...)
}

// Embedder turns texts into dense vectors of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
