package gemini

import (
	"fmt"

	"cloud.google.com/go/auth"
	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"
)

// Backend represents the backend type for Gemini provider
type Backend string

const (
	// BackendVertexAI represents the Vertex AI backend
	BackendVertexAI Backend = "vertexai"
	// BackendGenAI represents the GenAI backend
	BackendGenAI Backend = "genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Config holds Gemini-specific configuration (authentication, endpoints, advanced options)
type Config struct {
	// Backend specifies which backend to use (vertexai or genai)
	Backend Backend `json:"backend" yaml:"backend"`

	// Vertex AI specific configuration
	Project  string `json:"project,omitempty" yaml:"project"`
	Location string `json:"location,omitempty" yaml:"location"`

	// GenAI specific configuration
	APIKey string `json:"apiKey,omitempty" yaml:"api_key"`

	// Credentials configuration for Vertex AI
	CredentialsPath    string `json:"credentialsPath,omitempty" yaml:"credentials_path"`
	CredentialsContent string `json:"credentialsContent,omitempty" yaml:"-"`

	// EmbeddingDimension truncates embeddings to this size when set.
	EmbeddingDimension int32 `json:"embeddingDimension,omitempty" yaml:"embedding_dimension"`

	SafetySettings []*genai.SafetySetting `json:"safetySettings,omitempty" yaml:"-"`
}

// Option represents a Gemini-specific configuration option function
type Option func(*Config)

// WithVertexAI configures for Vertex AI backend
func WithVertexAI(project, location string) Option {
	return func(c *Config) {
		c.Backend = BackendVertexAI
		c.Project = project
		c.Location = location
	}
}

// WithGenAI configures for GenAI backend
func WithGenAI(apiKey string) Option {
	return func(c *Config) {
		c.Backend = BackendGenAI
		c.APIKey = apiKey
	}
}

// WithCredentialsPath sets the path to a service account or ADC credentials file.
func WithCredentialsPath(path string) Option {
	return func(c *Config) {
		c.CredentialsPath = path
	}
}

// WithCredentialsContent sets the credentials JSON directly.
func WithCredentialsContent(content string) Option {
	return func(c *Config) {
		c.CredentialsContent = content
	}
}

// WithEmbeddingDimension sets the output dimensionality of embeddings.
func WithEmbeddingDimension(dim int32) Option {
	return func(c *Config) {
		c.EmbeddingDimension = dim
	}
}

// WithDefaultSafetySettings enables default safety filtering with medium threshold
func WithDefaultSafetySettings() Option {
	return func(c *Config) {
		c.SafetySettings = []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		}
	}
}

// NewConfig creates a new Gemini configuration with the given options
func NewConfig(options ...Option) *Config {
	config := &Config{Backend: BackendGenAI}
	for _, option := range options {
		option(config)
	}
	return config
}

// clientConfig translates Config into the SDK configuration.
func (c *Config) clientConfig() (*genai.ClientConfig, error) {
	switch c.Backend {
	case BackendGenAI, "":
		if c.APIKey == "" {
			return nil, fmt.Errorf("gemini: api key is required for the %s backend", BackendGenAI)
		}
		return &genai.ClientConfig{APIKey: c.APIKey, Backend: genai.BackendGeminiAPI}, nil
	case BackendVertexAI:
		if c.Project == "" || c.Location == "" {
			return nil, fmt.Errorf("gemini: project and location are required for the %s backend", BackendVertexAI)
		}
		creds, err := c.credentials()
		if err != nil {
			return nil, err
		}
		return &genai.ClientConfig{
			Backend:     genai.BackendVertexAI,
			Project:     c.Project,
			Location:    c.Location,
			Credentials: creds,
		}, nil
	default:
		return nil, fmt.Errorf("gemini: unknown backend %q", c.Backend)
	}
}

// credentials returns nil when no explicit credentials are configured, which
// makes the SDK fall back to Application Default Credentials.
func (c *Config) credentials() (*auth.Credentials, error) {
	if c.CredentialsPath == "" && c.CredentialsContent == "" {
		return nil, nil
	}
	opts := &credentials.DetectOptions{
		Scopes:          []string{cloudPlatformScope},
		CredentialsFile: c.CredentialsPath,
	}
	if c.CredentialsContent != "" {
		opts.CredentialsJSON = []byte(c.CredentialsContent)
	}
	creds, err := credentials.DetectDefault(opts)
	if err != nil {
		return nil, fmt.Errorf("gemini: loading credentials: %w", err)
	}
	return creds, nil
}
