package graph

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/edugen/edugen/graph"

var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)
)

var (
	metricsOnce  sync.Once
	nodeLatency  metric.Float64Histogram
	nodeFailures metric.Int64Counter
	runRounds    metric.Int64Histogram
)

// initMetrics lazily creates the instruments. A failed instrument is logged
// and replaced by a no-op so execution never depends on metrics.
func initMetrics(logger *slog.Logger) {
	metricsOnce.Do(func() {
		var err error
		if nodeLatency, err = meter.Float64Histogram("graph_node_duration_seconds",
			metric.WithDescription("Time spent executing each graph node"),
			metric.WithUnit("s"),
		); err != nil {
			logger.Warn("graph metrics unavailable", slog.String("instrument", "graph_node_duration_seconds"), slog.Any("error", err))
		}
		if nodeFailures, err = meter.Int64Counter("graph_node_failure_total",
			metric.WithDescription("Number of node executions that produced a failure envelope"),
		); err != nil {
			logger.Warn("graph metrics unavailable", slog.String("instrument", "graph_node_failure_total"), slog.Any("error", err))
		}
		if runRounds, err = meter.Int64Histogram("graph_run_rounds",
			metric.WithDescription("Rounds taken by a completed run"),
		); err != nil {
			logger.Warn("graph metrics unavailable", slog.String("instrument", "graph_run_rounds"), slog.Any("error", err))
		}
	})
}

func recordNode(ctx context.Context, name string, start time.Time, failed bool) {
	attrs := metric.WithAttributes(attribute.String("node", name))
	if nodeLatency != nil {
		nodeLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if failed && nodeFailures != nil {
		nodeFailures.Add(ctx, 1, attrs)
	}
}

func recordRun(ctx context.Context, rounds int) {
	if runRounds != nil {
		runRounds.Record(ctx, int64(rounds))
	}
}
