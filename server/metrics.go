package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "edugen_generate_requests_total",
			Help: "Generate requests by outcome.",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "edugen_generate_duration_seconds",
			Help:    "Time spent serving generate requests.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
	}
}

func (m *metrics) observe(status string, start time.Time) {
	m.requests.WithLabelValues(status).Inc()
	m.duration.Observe(time.Since(start).Seconds())
}
