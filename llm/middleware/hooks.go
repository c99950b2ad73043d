package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/llmrouter/core/llm/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logging logs a line per call at start and completion.
func Logging(logger *zap.Logger) Hook {
	return func(next Next) Next {
		return func(ctx context.Context, mc *Context) error {
			logger.Debug("call start", zap.String("binding", mc.Binding), zap.String("request_id", mc.RequestID))
			start := time.Now()

			err := next(ctx, mc)

			fields := []zap.Field{
				zap.String("binding", mc.Binding),
				zap.String("request_id", mc.RequestID),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("call error", append(fields, zap.Error(err))...)
			} else {
				logger.Debug("call success", fields...)
			}
			return err
		}
	}
}

// Recovery converts a panic inside the chain into a returned error, so a
// single misbehaving hook or provider can't take down the caller's goroutine.
func Recovery(onPanic func(binding string, value any)) Hook {
	return func(next Next) Next {
		return func(ctx context.Context, mc *Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if onPanic != nil {
						onPanic(mc.Binding, r)
					}
					err = &PanicError{Value: r}
				}
			}()
			return next(ctx, mc)
		}
	}
}

// PanicError wraps a recovered panic value as an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// BindingParts extracts the provider key and model from a chain's binding,
// so Metrics doesn't need to know the orchestrator's concrete request type.
type BindingParts func(mc *Context) (provider, model string)

// Metrics times every call and reports it through m. kindOf classifies a
// returned error into the taxonomy's Kind string; pass nil to omit the label.
func Metrics(m *observability.Metrics, parts BindingParts, kindOf func(error) string) Hook {
	return func(next Next) Next {
		return func(ctx context.Context, mc *Context) error {
			provider, model := parts(mc)
			start := time.Now()
			ctx, span := m.StartRequest(ctx, observability.RequestAttrs{
				Binding: mc.Binding, Provider: provider, Model: model,
			})

			err := next(ctx, mc)

			status := "success"
			errKind := ""
			if err != nil {
				status = "error"
				if kindOf != nil {
					errKind = kindOf(err)
				}
			}
			m.EndRequest(ctx, span, observability.RequestAttrs{Binding: mc.Binding, Provider: provider, Model: model},
				observability.ResponseAttrs{Status: status, ErrorKind: errKind, Duration: time.Since(start)})
			return err
		}
	}
}

// Tracing wraps the call in a span, independent of whether Metrics is also
// installed (Metrics' StartRequest may itself open a span; Tracing is for
// chains that want tracing without the full metrics recorder).
func Tracing(tracer trace.Tracer) Hook {
	return func(next Next) Next {
		return func(ctx context.Context, mc *Context) error {
			ctx, span := tracer.Start(ctx, "llm.middleware.chat",
				trace.WithAttributes(attribute.String("llm.binding", mc.Binding)))
			defer span.End()

			err := next(ctx, mc)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return err
		}
	}
}
