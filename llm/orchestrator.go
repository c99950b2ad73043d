package llm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/llmrouter/core/llm/circuitbreaker"
	"github.com/llmrouter/core/llm/config"
	"github.com/llmrouter/core/llm/limiter"
	"github.com/llmrouter/core/llm/middleware"
	"github.com/llmrouter/core/llm/observability"
	"github.com/llmrouter/core/llm/retry"
	"github.com/llmrouter/core/llm/streaming"
	"github.com/llmrouter/core/types"
	"go.uber.org/zap"
)

// Orchestrator is the core of the router: it resolves a logical model to a
// binding, then runs the call through the reliability stack in a fixed
// order — breaker admission, limiter admission, an optional per-attempt
// deadline, the provider call itself, error classification, breaker
// outcome recording — all wrapped by the retry executor and the middleware
// chain. Fallback, Race and Map compose Orchestrator.Chat; they do not
// reimplement any of this.
type Orchestrator struct {
	registry  *Registry
	providers map[string]Provider

	limiter *limiter.Limiter
	breaker *circuitbreaker.Breaker
	retry   config.RetryPolicy
	chain   *middleware.Chain

	cost    *CostAccumulator
	events  *EventBus
	metrics *observability.Metrics
	logger  *zap.Logger

	timeout time.Duration
}

// New builds an Orchestrator from a normalized Config and the set of
// registered providers, keyed by their ID(). A nil event bus is replaced
// with one that has no observers, and a nil logger with a no-op logger in
// every component that uses it; metrics stay unset unless WithMetrics is
// given.
func New(cfg config.Config, registry *Registry, providers map[string]Provider, opts ...Option) *Orchestrator {
	cfg = config.Normalize(cfg)

	o := &Orchestrator{
		registry:  registry,
		providers: providers,
		retry:     cfg.Retry,
		logger:    zap.NewNop(),
		cost:      NewCostAccumulator(),
		timeout:   time.Duration(cfg.TimeoutMs) * time.Millisecond,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.breaker = circuitbreaker.New(circuitbreaker.Config{
		Threshold:      cfg.Breaker.FailureThreshold,
		OpenDuration:   time.Duration(cfg.Breaker.OpenDurationMs) * time.Millisecond,
		HalfOpenProbes: cfg.Breaker.HalfOpenProbes,
		OnStateChange:  o.onBreakerStateChange,
	}, o.logger)

	o.limiter = limiter.New(o.logger, o.onLimiterWait)
	for binding, lim := range cfg.Limits {
		o.limiter.Configure(binding, lim.RPS, lim.Burst)
	}

	if o.chain == nil {
		o.chain = middleware.NewChain()
	}
	if o.events == nil {
		o.events = NewEventBus(o.logger, 0)
	}

	return o
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithLogger installs a structured logger, used by the breaker, limiter,
// retry executor and event bus. It does not install a Logging middleware
// hook; add one with WithMiddleware.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics stores the OpenTelemetry instrument set on the Orchestrator.
// The Orchestrator records nothing through it by itself; calls are measured
// only when a middleware.Metrics hook is installed with WithMiddleware.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithEventBus installs the event bus. Built with NewEventBus by the caller
// so observers can be wired before any call happens.
func WithEventBus(bus *EventBus) Option {
	return func(o *Orchestrator) { o.events = bus }
}

// WithMiddleware appends hooks to the call chain, in registration order.
func WithMiddleware(hooks ...middleware.Hook) Option {
	return func(o *Orchestrator) {
		if o.chain == nil {
			o.chain = middleware.NewChain()
		}
		for _, h := range hooks {
			o.chain.Use(h)
		}
	}
}

// TotalCostUSD returns the orchestrator's running cost total across every
// call it has made, monotonically non-decreasing.
func (o *Orchestrator) TotalCostUSD() float64 {
	return o.cost.Total()
}

func (o *Orchestrator) onBreakerStateChange(binding string, from, to circuitbreaker.State) {
	observeBreakerState(binding, int(to))
	var evt EventType
	switch to {
	case circuitbreaker.StateOpen:
		evt = EventBreakerOpen
	case circuitbreaker.StateClosed:
		evt = EventBreakerClose
	default:
		return
	}
	o.events.Emit(EventRecord{Type: evt, Binding: binding})
}

func (o *Orchestrator) onLimiterWait(binding string, waitMs int64) {
	observeLimiterWait(binding, waitMs)
	o.events.Emit(EventRecord{Type: EventLimiterWait, Binding: binding, WaitMs: waitMs})
}

// Chat performs a unary chat call, running the full reliability stack
// (breaker, limiter, retry, provider, classification) under the middleware
// chain. req.RequestID is populated if empty.
func (o *Orchestrator) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	binding, provider, err := resolveBinding(o.registry, o.providers, req)
	if err != nil {
		return nil, err.(*Error).WithRequestID(req.RequestID)
	}
	key := binding.Key()
	ctx = types.WithRequestID(ctx, req.RequestID)

	mc := &middleware.Context{Binding: key, RequestID: req.RequestID, Request: req, StartedAt: time.Now()}
	next := o.chain.Then(func(ctx context.Context, mc *middleware.Context) error {
		resp, callErr := o.callWithReliability(ctx, key, binding, provider, req)
		mc.Response, mc.Err = resp, callErr
		return callErr
	})

	err2 := next(ctx, mc)
	mc.EndedAt = time.Now()
	if err2 != nil {
		return nil, err2
	}
	return mc.Response.(*ChatResponse), nil
}

// callWithReliability executes one logical call (all retry attempts) for an
// already-resolved binding: retry wraps breaker+limiter+provider+classify,
// per attempt, in that order.
func (o *Orchestrator) callWithReliability(ctx context.Context, key string, binding Binding, provider Provider, req *ChatRequest) (*ChatResponse, error) {
	classifier := retry.Classifier{IsRetryable: IsRetryable, RetryAfterMs: RetryAfterOf}
	executor := retry.New(o.retry, classifier, o.logger, func(attempt int, waitMs int64, lastErr error) {
		observeRetryAttempt(key)
		o.events.Emit(EventRecord{Type: EventCallRetry, Binding: key, RequestID: req.RequestID, Attempt: attempt, WaitMs: waitMs, Error: asClassified(lastErr)})
	})

	var resp *ChatResponse
	var lastAttempt int
	err := executor.Do(ctx, func(attempt int) error {
		lastAttempt = attempt
		o.events.Emit(EventRecord{Type: EventCallStart, Binding: key, RequestID: req.RequestID, Attempt: attempt})

		if berr := o.breaker.BeforePass(key); berr != nil {
			return NewError(KindBreakerOpen, "circuit open for binding "+key).WithBinding(key).WithRequestID(req.RequestID)
		}

		if lerr := o.limiter.Acquire(ctx, key); lerr != nil {
			return classify(lerr).WithBinding(key).WithRequestID(req.RequestID)
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if o.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, o.timeout)
			defer cancel()
		}

		r, perr := provider.Chat(attemptCtx, req)
		if perr != nil {
			cerr := classify(perr).WithBinding(key).WithRequestID(req.RequestID)
			o.breaker.Record(key, cerr.countsAsSuccessForBreaker())
			o.events.Emit(EventRecord{Type: EventCallError, Binding: key, RequestID: req.RequestID, Attempt: attempt, Error: cerr})
			return cerr
		}

		o.breaker.Record(key, true)
		r.Provider, r.Model = binding.ProviderKey, binding.Model
		if r.Tokens.Input == 0 && r.Tokens.Output == 0 {
			r.Tokens = EstimateTokens(binding.Model, req.Messages, r.Content)
		}
		if r.CostUSD == 0 {
			r.CostUSD = o.cost.Compute(binding, r.Tokens)
		}
		o.cost.Add(r.CostUSD)
		resp = r
		o.events.Emit(EventRecord{Type: EventCallSuccess, Binding: key, RequestID: req.RequestID, Attempt: attempt})
		return nil
	})

	if err != nil {
		if cerr, ok := err.(*Error); ok {
			return nil, cerr.WithAttempts(lastAttempt)
		}
		return nil, classify(err).WithBinding(key).WithRequestID(req.RequestID).WithAttempts(lastAttempt)
	}
	return resp, nil
}

// countsAsSuccessForBreaker inverts CountsAgainstBreaker for readability at
// the Record call site: a failure that doesn't count against the breaker
// (ClientError, AuthError, Canceled, ...) is recorded as a success so it
// doesn't nudge the binding toward open.
func (e *Error) countsAsSuccessForBreaker() bool {
	return !e.Kind.countsAgainstBreaker()
}

func asClassified(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return nil
}

// StreamChat performs a streaming chat call. Unlike Chat, retry only covers
// the attempt that establishes the stream: once the provider starts
// producing deltas, a mid-stream error terminates the relay rather than
// retrying (restarting a partially-delivered stream would duplicate
// content for the caller).
func (o *Orchestrator) StreamChat(ctx context.Context, req *ChatRequest) (<-chan ChatDelta, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	binding, provider, err := resolveBinding(o.registry, o.providers, req)
	if err != nil {
		return nil, err.(*Error).WithRequestID(req.RequestID)
	}
	key := binding.Key()
	ctx = types.WithRequestID(ctx, req.RequestID)

	classifier := retry.Classifier{IsRetryable: IsRetryable, RetryAfterMs: RetryAfterOf}
	executor := retry.New(o.retry, classifier, o.logger, func(attempt int, waitMs int64, lastErr error) {
		observeRetryAttempt(key)
		o.events.Emit(EventRecord{Type: EventCallRetry, Binding: key, RequestID: req.RequestID, Attempt: attempt, WaitMs: waitMs, Error: asClassified(lastErr)})
	})

	var upstream <-chan ChatDelta
	var lastAttempt int
	err2 := executor.Do(ctx, func(attempt int) error {
		lastAttempt = attempt
		o.events.Emit(EventRecord{Type: EventCallStart, Binding: key, RequestID: req.RequestID, Attempt: attempt})

		if berr := o.breaker.BeforePass(key); berr != nil {
			return NewError(KindBreakerOpen, "circuit open for binding "+key).WithBinding(key).WithRequestID(req.RequestID)
		}
		if lerr := o.limiter.Acquire(ctx, key); lerr != nil {
			return classify(lerr).WithBinding(key).WithRequestID(req.RequestID)
		}

		ch, serr := provider.Stream(ctx, req)
		if serr != nil {
			cerr := classify(serr).WithBinding(key).WithRequestID(req.RequestID)
			o.breaker.Record(key, cerr.countsAsSuccessForBreaker())
			return cerr
		}
		o.breaker.Record(key, true)
		upstream = ch
		return nil
	})
	if err2 != nil {
		if cerr, ok := err2.(*Error); ok {
			return nil, cerr.WithAttempts(lastAttempt)
		}
		return nil, classify(err2).WithBinding(key).WithRequestID(req.RequestID).WithAttempts(lastAttempt)
	}

	relay := streaming.NewRelay[ChatDelta](16)
	go o.pumpStream(ctx, key, req, upstream, relay)
	return relay.Chan(), nil
}

// pumpStream relays upstream deltas into relay until upstream closes, ctx is
// canceled, or a delta carries an error — whichever happens first — then
// closes relay so the consumer's range terminates.
func (o *Orchestrator) pumpStream(ctx context.Context, key string, req *ChatRequest, upstream <-chan ChatDelta, relay *streaming.Relay[ChatDelta]) {
	defer relay.Close()
	for {
		select {
		case delta, ok := <-upstream:
			if !ok {
				o.events.Emit(EventRecord{Type: EventCallSuccess, Binding: key, RequestID: req.RequestID})
				return
			}
			if relay.Send(ctx, delta) != nil {
				return
			}
			if delta.Err != nil {
				cerr := classify(delta.Err).WithBinding(key).WithRequestID(req.RequestID)
				o.events.Emit(EventRecord{Type: EventCallError, Binding: key, RequestID: req.RequestID, Error: cerr})
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// classify maps an error from the limiter, provider, or context package into
// the orchestrator's closed Kind taxonomy. Already-classified errors pass
// through unchanged.
func classify(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	switch {
	case errors.Is(err, context.Canceled):
		return NewError(KindCanceled, "call canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(KindTimeout, "call deadline exceeded").WithCause(err)
	}
	return NewError(KindNetworkError, "unclassified error").WithCause(err)
}
