// Package retry provides an exponential-backoff-with-jitter executor that
// retries a function until it succeeds, exhausts its attempt budget, or
// receives a non-retryable error.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/llmrouter/core/llm/config"
	"go.uber.org/zap"
)

// OnRetry is invoked before each sleep between attempts, so callers can
// surface a call.retry event.
type OnRetry func(attempt int, waitMs int64, err error)

// Classifier answers the two questions the executor needs about an error:
// whether it's worth retrying, and whether it carries a provider-signaled
// retry-after hint (in milliseconds, 0 if none).
type Classifier struct {
	IsRetryable  func(err error) bool
	RetryAfterMs func(err error) int64
}

// Executor runs calls under a single retry policy.
type Executor struct {
	policy     config.RetryPolicy
	classifier Classifier
	logger     *zap.Logger
	onRetry    OnRetry
}

// New builds an Executor. logger and onRetry may be nil.
func New(policy config.RetryPolicy, classifier Classifier, logger *zap.Logger, onRetry OnRetry) *Executor {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.BaseMs <= 0 {
		policy.BaseMs = 1000
	}
	if policy.MaxMs <= 0 {
		policy.MaxMs = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{policy: policy, classifier: classifier, logger: logger, onRetry: onRetry}
}

// Do invokes fn until it succeeds, the attempt budget is exhausted, or fn
// returns a non-retryable error. The final attempt's error is returned
// unchanged. Cancellation during the backoff sleep returns ctx.Err()
// (callers are expected to classify it as Canceled), not the last error fn
// produced.
func (e *Executor) Do(ctx context.Context, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			waitMs := e.delayMs(attempt-1, lastErr)
			if e.onRetry != nil {
				e.onRetry(attempt-1, waitMs, lastErr)
			}
			if err := e.sleep(ctx, waitMs); err != nil {
				return err
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if e.classifier.IsRetryable == nil || !e.classifier.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt >= e.policy.MaxAttempts {
			break
		}
	}

	return lastErr
}

// delayMs computes the backoff for having just failed attempt k (1-indexed),
// per raw = min(maxMs, baseMs*2^(k-1)), jittered, then floored by any
// provider-signaled retry-after.
func (e *Executor) delayMs(k int, err error) int64 {
	raw := float64(e.policy.BaseMs) * math.Pow(2, float64(k-1))
	if raw > float64(e.policy.MaxMs) {
		raw = float64(e.policy.MaxMs)
	}

	delay := raw
	if e.policy.Jitter == config.JitterFull {
		delay = rand.Float64() * raw
	}

	if e.classifier.RetryAfterMs != nil {
		if after := e.classifier.RetryAfterMs(err); after > int64(delay) {
			delay = float64(after)
		}
	}

	return int64(delay)
}

func (e *Executor) sleep(ctx context.Context, waitMs int64) error {
	timer := time.NewTimer(time.Duration(waitMs) * time.Millisecond)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
