package llm

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus instruments complementing the otel-based observability.Metrics:
// these track per-binding reliability-stack state that's naturally a gauge
// or a cheap counter, scraped independently of any tracing backend.
var (
	llmBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_breaker_state",
			Help: "Circuit breaker state per binding (0=closed, 1=open, 2=half_open).",
		},
		[]string{"binding"},
	)
	llmLimiterWaitMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_limiter_wait_ms",
			Help:    "Time spent waiting for limiter admission, in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"binding"},
	)
	llmRetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_retry_attempts_total",
			Help: "Total retry attempts made, per binding.",
		},
		[]string{"binding"},
	)
	llmEventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_events_dropped_total",
			Help: "Total events dropped because an observer's queue was full.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		llmBreakerState,
		llmLimiterWaitMs,
		llmRetryAttemptsTotal,
		llmEventsDroppedTotal,
	)
}

func observeBreakerState(binding string, state int) {
	llmBreakerState.WithLabelValues(binding).Set(float64(state))
}

func observeLimiterWait(binding string, waitMs int64) {
	llmLimiterWaitMs.WithLabelValues(binding).Observe(float64(waitMs))
}

func observeRetryAttempt(binding string) {
	llmRetryAttemptsTotal.WithLabelValues(binding).Inc()
}

func observeEventsDropped(n int64) {
	llmEventsDroppedTotal.Add(float64(n))
}
