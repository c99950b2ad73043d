// Package metrics provides the orchestrator's per-binding Prometheus
// instrumentation. Internal: not imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector records binding-scoped call outcomes: counts, duration, token
// usage and cost, each labeled by binding (provider:model) rather than a
// generic service dimension.
type Collector struct {
	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	tokensUsed   *prometheus.CounterVec
	costTotal    *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a Collector registered under namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of orchestrator calls.",
		},
		[]string{"binding", "status"},
	)

	c.callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Call duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"binding"},
	)

	c.tokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Total tokens consumed.",
		},
		[]string{"binding", "direction"}, // direction: input, output
	)

	c.costTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_usd_total",
			Help:      "Total call cost in USD.",
		},
		[]string{"binding"},
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// RecordCall records one completed call's outcome against a binding.
func (c *Collector) RecordCall(binding, status string, duration time.Duration, inputTokens, outputTokens int, costUSD float64) {
	c.callsTotal.WithLabelValues(binding, status).Inc()
	c.callDuration.WithLabelValues(binding).Observe(duration.Seconds())
	c.tokensUsed.WithLabelValues(binding, "input").Add(float64(inputTokens))
	c.tokensUsed.WithLabelValues(binding, "output").Add(float64(outputTokens))
	c.costTotal.WithLabelValues(binding).Add(costUSD)
}
