package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/llmrouter/core/llm"

// Metrics is the orchestrator's OpenTelemetry instrumentation: one meter and
// tracer shared across every call.
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter

	requestTotal  metric.Int64Counter
	tokenTotal    metric.Int64Counter
	errorTotal    metric.Int64Counter
	retryTotal    metric.Int64Counter
	fallbackTotal metric.Int64Counter

	requestDuration metric.Float64Histogram
	tokenCount      metric.Int64Histogram
	costPerRequest  metric.Float64Histogram

	activeRequests metric.Int64UpDownCounter
}

// NewMetrics builds the instrument set.
func NewMetrics() (*Metrics, error) {
	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	m := &Metrics{tracer: tracer, meter: meter}
	var err error

	if m.requestTotal, err = meter.Int64Counter("llm.request.total",
		metric.WithDescription("Total number of orchestrator calls"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if m.tokenTotal, err = meter.Int64Counter("llm.token.total",
		metric.WithDescription("Total tokens consumed"),
		metric.WithUnit("{token}")); err != nil {
		return nil, err
	}
	if m.errorTotal, err = meter.Int64Counter("llm.error.total",
		metric.WithDescription("Total number of classified errors"),
		metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	if m.retryTotal, err = meter.Int64Counter("llm.retry.total",
		metric.WithDescription("Total retry attempts"),
		metric.WithUnit("{attempt}")); err != nil {
		return nil, err
	}
	if m.fallbackTotal, err = meter.Int64Counter("llm.fallback.total",
		metric.WithDescription("Total fallback advances"),
		metric.WithUnit("{fallback}")); err != nil {
		return nil, err
	}
	if m.requestDuration, err = meter.Float64Histogram("llm.request.duration",
		metric.WithDescription("Call duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30)); err != nil {
		return nil, err
	}
	if m.tokenCount, err = meter.Int64Histogram("llm.token.count",
		metric.WithDescription("Token count per call"),
		metric.WithUnit("{token}"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 2000, 4000, 8000, 16000, 32000)); err != nil {
		return nil, err
	}
	if m.costPerRequest, err = meter.Float64Histogram("llm.cost.per_request",
		metric.WithDescription("Cost per call in USD"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5)); err != nil {
		return nil, err
	}
	if m.activeRequests, err = meter.Int64UpDownCounter("llm.request.active",
		metric.WithDescription("In-flight calls"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}

	return m, nil
}

// RequestAttrs identifies the call a span/metric set belongs to.
type RequestAttrs struct {
	Binding  string
	Provider string
	Model    string
}

// ResponseAttrs carries the outcome recorded at EndRequest.
type ResponseAttrs struct {
	Status       string // "success" | "error"
	ErrorKind    string
	TokensInput  int
	TokensOutput int
	Cost         float64
	Duration     time.Duration
}

// StartRequest opens a span and increments the active-request gauge.
func (m *Metrics) StartRequest(ctx context.Context, attrs RequestAttrs) (context.Context, trace.Span) {
	ctx, span := m.tracer.Start(ctx, "llm.chat",
		trace.WithAttributes(
			attribute.String("llm.binding", attrs.Binding),
			attribute.String("llm.provider", attrs.Provider),
			attribute.String("llm.model", attrs.Model),
		))

	m.activeRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", attrs.Provider),
		attribute.String("model", attrs.Model)))

	return ctx, span
}

// EndRequest closes span, ends the span, and records every instrument for
// the call's outcome.
func (m *Metrics) EndRequest(ctx context.Context, span trace.Span, req RequestAttrs, resp ResponseAttrs) {
	defer span.End()

	commonAttrs := []attribute.KeyValue{
		attribute.String("provider", req.Provider),
		attribute.String("model", req.Model),
		attribute.String("status", resp.Status),
	}

	m.activeRequests.Add(ctx, -1, metric.WithAttributes(
		attribute.String("provider", req.Provider),
		attribute.String("model", req.Model)))

	m.requestTotal.Add(ctx, 1, metric.WithAttributes(commonAttrs...))
	m.requestDuration.Record(ctx, resp.Duration.Seconds(), metric.WithAttributes(commonAttrs...))

	totalTokens := int64(resp.TokensInput + resp.TokensOutput)
	if totalTokens > 0 {
		m.tokenTotal.Add(ctx, totalTokens, metric.WithAttributes(
			attribute.String("provider", req.Provider), attribute.String("model", req.Model), attribute.String("type", "total")))
		m.tokenTotal.Add(ctx, int64(resp.TokensInput), metric.WithAttributes(
			attribute.String("provider", req.Provider), attribute.String("model", req.Model), attribute.String("type", "input")))
		m.tokenTotal.Add(ctx, int64(resp.TokensOutput), metric.WithAttributes(
			attribute.String("provider", req.Provider), attribute.String("model", req.Model), attribute.String("type", "output")))
		m.tokenCount.Record(ctx, totalTokens, metric.WithAttributes(commonAttrs...))
	}

	if resp.Cost > 0 {
		m.costPerRequest.Record(ctx, resp.Cost, metric.WithAttributes(commonAttrs...))
	}

	if resp.ErrorKind != "" {
		m.errorTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("provider", req.Provider), attribute.String("model", req.Model), attribute.String("kind", resp.ErrorKind)))
		span.SetAttributes(attribute.String("llm.error_kind", resp.ErrorKind))
	}

	span.SetAttributes(
		attribute.String("llm.status", resp.Status),
		attribute.Int("llm.tokens.input", resp.TokensInput),
		attribute.Int("llm.tokens.output", resp.TokensOutput),
		attribute.Float64("llm.cost", resp.Cost),
	)
}

// RecordRetry records one retry attempt against a binding.
func (m *Metrics) RecordRetry(ctx context.Context, provider, model string) {
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider), attribute.String("model", model)))
}

// RecordFallback records one fallback advance from one binding to the next.
func (m *Metrics) RecordFallback(ctx context.Context, fromProvider, toProvider string) {
	m.fallbackTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", fromProvider), attribute.String("to", toProvider)))
}

// Tracer exposes the underlying tracer for callers composing their own spans.
func (m *Metrics) Tracer() trace.Tracer {
	return m.tracer
}
