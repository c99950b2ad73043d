// Package limiter provides per-binding token-bucket admission control built
// on golang.org/x/time/rate.
package limiter

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNeverAdmitted is returned in the defensive, practically-unreachable
// case where a binding's burst cannot admit even a single token.
var ErrNeverAdmitted = errors.New("limiter: binding burst cannot admit a token")

// WaitObserver is notified before the limiter blocks a caller, so the
// orchestrator can emit a limiter.wait event.
type WaitObserver func(binding string, waitMs int64)

// Limiter admits calls for a set of bindings, each with its own token
// bucket. Bindings with no configured rule pass through immediately.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	logger  *zap.Logger
	onWait  WaitObserver
}

// New creates an empty Limiter. logger and onWait may be nil.
func New(logger *zap.Logger, onWait WaitObserver) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		logger:  logger,
		onWait:  onWait,
	}
}

// Configure installs or replaces the admission rule for binding. burst
// defaults to ceil(rps) when zero.
func (l *Limiter) Configure(binding string, rps float64, burst int) {
	if burst <= 0 {
		burst = int(math.Ceil(rps))
		if burst < 1 {
			burst = 1
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[binding] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Acquire blocks until a token is available for binding, or ctx is
// canceled. Bindings with no configured rule return immediately. On
// cancellation, Acquire returns ctx.Err() and the reserved token is
// returned to the bucket — no token is consumed.
func (l *Limiter) Acquire(ctx context.Context, binding string) error {
	l.mu.RLock()
	b := l.buckets[binding]
	l.mu.RUnlock()
	if b == nil {
		return nil
	}

	now := time.Now()
	reservation := b.ReserveN(now, 1)
	if !reservation.OK() {
		l.logger.Warn("binding burst too small to ever admit", zap.String("binding", binding))
		reservation.CancelAt(now)
		return ErrNeverAdmitted
	}

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if l.onWait != nil {
		l.onWait(binding, delay.Milliseconds())
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.CancelAt(time.Now())
		return ctx.Err()
	}
}
