// Package config loads the edugen configuration from YAML, a .env file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Model     ModelConfig     `yaml:"model"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Graph     GraphConfig     `yaml:"graph"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// PostgresConfig locates the curriculum database and the table holding the embeddings.
type PostgresConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	Database string `yaml:"database" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Table    string `yaml:"table" validate:"required"`
	MaxConns int32  `yaml:"max_conns" validate:"gte=0"`
}

// DSN returns a postgres:// connection URL.
func (p PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(p.User, p.Password),
		Host:   p.Host + ":" + strconv.Itoa(p.Port),
		Path:   "/" + p.Database,
	}
	return u.String()
}

// ModelConfig selects the chat and embedding provider and how calls to it are retried,
// rate limited and timed out. API keys are normally supplied through the environment.
type ModelConfig struct {
	Provider       string        `yaml:"provider" validate:"oneof=gemini openai"`
	Name           string        `yaml:"name" validate:"required"`
	EmbeddingModel string        `yaml:"embedding_model" validate:"required"`
	Temperature    float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	Retries        uint          `yaml:"retries"`
	RateLimit      float64       `yaml:"rate_limit" validate:"gte=0"`
	Burst          int           `yaml:"burst" validate:"gte=0"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	GoogleAPIKey   string        `yaml:"google_api_key"`
	OpenAIAPIKey   string        `yaml:"openai_api_key"`
	VertexProject  string        `yaml:"vertex_project"`
	VertexLocation string        `yaml:"vertex_location"`
}

// RetrievalConfig tunes vector search, relevance grading and ingestion.
type RetrievalConfig struct {
	EmbeddingDimension int     `yaml:"embedding_dimension" validate:"min=1"`
	TopK               int     `yaml:"top_k" validate:"min=1"`
	Threshold          float64 `yaml:"threshold" validate:"gt=0,lte=1"`
	MaxRetrievals      int     `yaml:"max_retrievals" validate:"gte=0"`
	BatchSize          int     `yaml:"batch_size" validate:"min=1"`
}

// GraphConfig bounds workflow execution.
type GraphConfig struct {
	MaxRounds      int `yaml:"max_rounds" validate:"gte=0"`
	MaxConcurrency int `yaml:"max_concurrency" validate:"gte=0"`
}

// LogConfig sets the slog level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "postgres",
			User:     "postgres",
			Table:    "curriculum",
		},
		Model: ModelConfig{
			Provider:       ProviderGemini,
			Name:           "gemini-2.5-flash",
			EmbeddingModel: "gemini-embedding-001",
			Retries:        2,
			RateLimit:      5,
			Burst:          5,
			Timeout:        time.Minute,
		},
		Retrieval: RetrievalConfig{
			EmbeddingDimension: 1024,
			TopK:               3,
			Threshold:          0.7,
			MaxRetrievals:      3,
			BatchSize:          50,
		},
		Graph: GraphConfig{
			MaxRounds: 25,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path (optional, may be empty or missing), then
// the .env file at envFile (optional), then applies environment overrides and
// validates the result.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if envFile != "" {
		// godotenv.Load never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"POSTGRES_HOST":   &c.Postgres.Host,
		"POSTGRES_DB":     &c.Postgres.Database,
		"POSTGRES_USER":   &c.Postgres.User,
		"POSTGRES_PWD":    &c.Postgres.Password,
		"GOOGLE_API_KEY":  &c.Model.GoogleAPIKey,
		"OPENAI_API_KEY":  &c.Model.OpenAIAPIKey,
		"EDUGEN_ADDR":     &c.Server.Addr,
		"EDUGEN_PROVIDER": &c.Model.Provider,
		"EDUGEN_MODEL":    &c.Model.Name,
		"EDUGEN_LOG":      &c.Log.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("POSTGRES_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: POSTGRES_PORT: %w", err)
		}
		c.Postgres.Port = port
	}
	return nil
}
