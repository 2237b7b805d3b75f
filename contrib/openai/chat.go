package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/edugen/edugen"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/openai/openai-go/v2/shared"
)

var (
	// ErrEmptyResponse indicates the provider returned no choices.
	ErrEmptyResponse = errors.New("empty completion response")
)

// Option configures the OpenAI provider.
type Option func(*Options)

// WithRequestOptions sets request options, for example option.WithAPIKey or option.WithBaseURL.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(o *Options) {
		o.RequestOpts = append(o.RequestOpts, opts...)
	}
}

// WithEmbeddingModel sets the model used by Embed.
func WithEmbeddingModel(model string, dimensions int64) Option {
	return func(o *Options) {
		o.EmbeddingModel = model
		o.EmbeddingDimensions = dimensions
	}
}

// Options holds the provider settings.
type Options struct {
	RequestOpts         []option.RequestOption
	EmbeddingModel      string
	EmbeddingDimensions int64
}

// Provider implements edugen.ModelProvider and edugen.Embedder for
// OpenAI-compatible APIs.
type Provider struct {
	opts   Options
	client openai.Client
}

// NewProvider constructs an OpenAI provider. Without request options the API key
// is read from OPENAI_API_KEY and the base URL from OPENAI_BASE_URL.
func NewProvider(opts ...Option) *Provider {
	o := Options{EmbeddingModel: string(openai.EmbeddingModelTextEmbedding3Small)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider{
		opts:   o,
		client: openai.NewClient(o.RequestOpts...),
	}
}

// Generate executes a non-streaming chat completion request.
func (p *Provider) Generate(ctx context.Context, req *edugen.ModelRequest, opts ...edugen.ModelOption) (*edugen.ModelResponse, error) {
	params, err := toChatCompletionParams(req, edugen.ApplyModelOptions(opts...))
	if err != nil {
		return nil, err
	}
	chatResponse, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(chatResponse.Choices) == 0 || chatResponse.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}
	return &edugen.ModelResponse{Messages: []*edugen.Message{
		edugen.AssistantMessage(chatResponse.Choices[0].Message.Content),
	}}, nil
}

// toChatCompletionParams converts a generic model request into OpenAI params.
func toChatCompletionParams(req *edugen.ModelRequest, opt edugen.ModelOptions) (openai.ChatCompletionNewParams, error) {
	if req == nil || len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("openai: request has no messages")
	}
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if opt.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(opt.MaxOutputTokens)
	}
	if opt.Temperature != nil {
		params.Temperature = param.NewOpt(*opt.Temperature)
	}
	if opt.TopP > 0 {
		params.TopP = param.NewOpt(opt.TopP)
	}
	if opt.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case edugen.RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(msg.Content))
		case edugen.RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(msg.Content))
		case edugen.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(msg.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("openai: unsupported role %s", msg.Role)
		}
	}
	return params, nil
}
