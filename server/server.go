// Package server exposes the workflow over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Generator produces the final response for a prompt. *workflow.Workflow implements it.
type Generator interface {
	Run(ctx context.Context, prompt string) (string, error)
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required,max=4000"`
}

// GenerateResponse is the answer of POST /generate.
type GenerateResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithServiceName sets the name reported on HTTP spans.
func WithServiceName(name string) Option {
	return func(s *Server) {
		s.serviceName = name
	}
}

// WithRegistry serves metrics from reg instead of a private registry, so
// collectors registered elsewhere appear on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// Server serves the generation API.
type Server struct {
	generator       Generator
	engine          *gin.Engine
	registry        *prometheus.Registry
	metrics         *metrics
	logger          *slog.Logger
	serviceName     string
	shutdownTimeout time.Duration
}

// New creates a Server with its routes registered.
func New(generator Generator, opts ...Option) *Server {
	s := &Server{
		generator:       generator,
		registry:        prometheus.NewRegistry(),
		logger:          slog.Default(),
		serviceName:     "edugen",
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.metrics = newMetrics(s.registry)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), otelgin.Middleware(s.serviceName), s.requestLogger())
	s.engine.POST("/generate", s.handleGenerate)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleGenerate(c *gin.Context) {
	start := time.Now()
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.observe("invalid", start)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}
	response, err := s.generator.Run(c.Request.Context(), req.Prompt)
	if err != nil {
		s.metrics.observe("error", start)
		s.logger.ErrorContext(c.Request.Context(), "generation failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to generate content"})
		return
	}
	s.metrics.observe("ok", start)
	c.JSON(http.StatusOK, GenerateResponse{Response: response})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
