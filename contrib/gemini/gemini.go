package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/edugen/edugen"
	"google.golang.org/genai"
)

// ErrEmptyEmbedding indicates the provider returned fewer embeddings than inputs.
var ErrEmptyEmbedding = errors.New("gemini: embedding response is incomplete")

// Client implements edugen.ModelProvider and edugen.Embedder on top of the
// Gemini API or Vertex AI. A single Client is safe for concurrent use.
type Client struct {
	genaiClient    *genai.Client
	embeddingModel string
	config         *Config
}

// NewClient creates a new Gemini client. embeddingModel is used by Embed.
func NewClient(ctx context.Context, config *Config, embeddingModel string) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("gemini: config cannot be nil")
	}
	clientConfig, err := config.clientConfig()
	if err != nil {
		return nil, err
	}
	genaiClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &Client{
		genaiClient:    genaiClient,
		embeddingModel: embeddingModel,
		config:         config,
	}, nil
}

// Generate runs a single non-streaming generation.
func (c *Client) Generate(ctx context.Context, req *edugen.ModelRequest, opts ...edugen.ModelOption) (*edugen.ModelResponse, error) {
	contents, systemInstruction, err := toContents(req)
	if err != nil {
		return nil, fmt.Errorf("converting request: %w", err)
	}
	config := toGenerateConfig(edugen.ApplyModelOptions(opts...))
	config.SystemInstruction = systemInstruction
	config.SafetySettings = c.config.SafetySettings

	resp, err := c.genaiClient.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	return toModelResponse(resp)
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}
	config := &genai.EmbedContentConfig{}
	if dim := c.config.EmbeddingDimension; dim > 0 {
		config.OutputDimensionality = &dim
	}
	resp, err := c.genaiClient.Models.EmbedContent(ctx, c.embeddingModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d of %d", ErrEmptyEmbedding, len(resp.Embeddings), len(texts))
	}
	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: embedding %d is empty", ErrEmptyEmbedding, i)
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}
