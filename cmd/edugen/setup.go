package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/edugen/edugen"
	"github.com/edugen/edugen/contrib/gemini"
	"github.com/edugen/edugen/contrib/openai"
	"github.com/edugen/edugen/contrib/otel"
	"github.com/edugen/edugen/evaluate"
	"github.com/edugen/edugen/graph"
	"github.com/edugen/edugen/internal/config"
	"github.com/edugen/edugen/retriever"
	"github.com/edugen/edugen/workflow"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"
)

type model interface {
	edugen.ModelProvider
	edugen.Embedder
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newModel(ctx context.Context, cfg config.ModelConfig, dimension int) (model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []openai.Option{openai.WithEmbeddingModel(cfg.EmbeddingModel, int64(dimension))}
		if cfg.OpenAIAPIKey != "" {
			opts = append(opts, openai.WithRequestOptions(option.WithAPIKey(cfg.OpenAIAPIKey)))
		}
		return openai.NewProvider(opts...), nil
	default:
		opts := []gemini.Option{gemini.WithEmbeddingDimension(int32(dimension))}
		if cfg.VertexProject != "" {
			opts = append(opts, gemini.WithVertexAI(cfg.VertexProject, cfg.VertexLocation))
		} else {
			opts = append(opts, gemini.WithGenAI(cfg.GoogleAPIKey))
		}
		return gemini.NewClient(ctx, gemini.NewConfig(opts...), cfg.EmbeddingModel)
	}
}

// withMiddlewares wraps generation with retries, tracing, the shared rate
// limiter and the empty-answer check. Every attempt gets its own span and
// waits on the limiter again.
func withMiddlewares(cfg config.ModelConfig, provider edugen.ModelProvider) edugen.ModelProvider {
	mws := []edugen.Middleware{
		edugen.Retry(cfg.Retries + 1),
		otel.Tracing(otel.WithSystem(cfg.Provider)),
	}
	if cfg.RateLimit > 0 {
		mws = append(mws, edugen.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))))
	}
	mws = append(mws, edugen.RequireText())
	return edugen.ChainMiddlewares(mws...)(provider)
}

func newPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// app holds the collaborators shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	store    *retriever.PGVector
	embedder edugen.Embedder
	model    edugen.ModelProvider
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	m, err := newModel(ctx, cfg.Model, cfg.Retrieval.EmbeddingDimension)
	if err != nil {
		return nil, err
	}
	pool, err := newPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		store:    retriever.NewPGVector(pool, cfg.Retrieval.EmbeddingDimension, retriever.WithTableName(cfg.Postgres.Table)),
		embedder: otel.TraceEmbedder(m, cfg.Model.EmbeddingModel, otel.WithSystem(cfg.Model.Provider)),
		model:    withMiddlewares(cfg.Model, m),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

func (a *app) workflow() (*workflow.Workflow, error) {
	grader, err := evaluate.NewRelevance(a.model,
		evaluate.WithThreshold(a.cfg.Retrieval.Threshold),
		evaluate.WithModel(a.cfg.Model.Name),
		evaluate.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	return workflow.New(workflow.Dependencies{
		Model:     a.model,
		Retriever: retriever.New(a.embedder, a.store),
		Grader:    grader,
	},
		workflow.WithModelName(a.cfg.Model.Name),
		workflow.WithModelOptions(edugen.Temperature(a.cfg.Model.Temperature)),
		workflow.WithTopK(a.cfg.Retrieval.TopK),
		workflow.WithMaxRounds(a.cfg.Graph.MaxRounds),
		workflow.WithMaxRetrievals(a.cfg.Retrieval.MaxRetrievals),
		workflow.WithNodeTimeout(a.cfg.Model.Timeout),
		workflow.WithGraphOptions(graph.WithMaxConcurrency(a.cfg.Graph.MaxConcurrency)),
		workflow.WithLogger(a.logger),
	)
}
