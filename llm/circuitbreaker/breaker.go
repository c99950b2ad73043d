// Package circuitbreaker provides a per-binding circuit breaker decoupled
// from the call it protects: callers invoke BeforePass to gate admission,
// make the call themselves, then invoke Record with the outcome.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is a breaker's position in the closed/open/half-open state machine.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by BeforePass when the breaker is rejecting calls.
var ErrOpen = errors.New("circuitbreaker: open")

// Config controls a single binding's breaker.
type Config struct {
	Threshold      int           // consecutive failures before opening
	OpenDuration   time.Duration // time spent open before trying half-open
	HalfOpenProbes int           // concurrent calls admitted while half-open
	OnStateChange  func(binding string, from, to State)
}

// DefaultConfig matches the spec's default breaker policy.
func DefaultConfig() Config {
	return Config{
		Threshold:      5,
		OpenDuration:   30 * time.Second,
		HalfOpenProbes: 1,
	}
}

func normalize(cfg Config) Config {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 5
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = 30 * time.Second
	}
	if cfg.HalfOpenProbes <= 0 {
		cfg.HalfOpenProbes = 1
	}
	return cfg
}

type binding struct {
	mu              sync.Mutex
	state           State
	failureCount    int
	openedAt        time.Time
	halfOpenInFlight int
}

// Breaker holds one state machine per binding key.
type Breaker struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.RWMutex
	bindings map[string]*binding
}

// New creates a Breaker. logger may be nil.
func New(cfg Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{
		cfg:      normalize(cfg),
		logger:   logger,
		bindings: make(map[string]*binding),
	}
}

func (b *Breaker) get(key string) *binding {
	b.mu.RLock()
	bd := b.bindings[key]
	b.mu.RUnlock()
	if bd != nil {
		return bd
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if bd = b.bindings[key]; bd != nil {
		return bd
	}
	bd = &binding{state: StateClosed}
	b.bindings[key] = bd
	return bd
}

// BeforePass gates admission for a call against key. Returns ErrOpen if the
// breaker is currently rejecting calls for this binding.
func (b *Breaker) BeforePass(key string) error {
	bd := b.get(key)
	bd.mu.Lock()
	defer bd.mu.Unlock()

	switch bd.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Since(bd.openedAt) < b.cfg.OpenDuration {
			return ErrOpen
		}
		b.transition(key, bd, StateHalfOpen)
		bd.halfOpenInFlight = 0
		fallthrough

	case StateHalfOpen:
		if bd.halfOpenInFlight >= b.cfg.HalfOpenProbes {
			return ErrOpen
		}
		bd.halfOpenInFlight++
		return nil
	}
	return nil
}

// Record reports the outcome of a call previously admitted by BeforePass.
// Errors classified as non-failures (ClientError, cancellation) must not
// reach Record as failures — the caller decides that before calling in.
func (b *Breaker) Record(key string, success bool) {
	bd := b.get(key)
	bd.mu.Lock()
	defer bd.mu.Unlock()

	switch bd.state {
	case StateClosed:
		if success {
			bd.failureCount = 0
			return
		}
		bd.failureCount++
		if bd.failureCount >= b.cfg.Threshold {
			bd.openedAt = time.Now()
			b.transition(key, bd, StateOpen)
		}

	case StateHalfOpen:
		bd.halfOpenInFlight--
		if bd.halfOpenInFlight < 0 {
			bd.halfOpenInFlight = 0
		}
		if success {
			bd.failureCount = 0
			b.transition(key, bd, StateClosed)
		} else {
			bd.openedAt = time.Now()
			b.transition(key, bd, StateOpen)
		}

	case StateOpen:
		// A result arriving for a call that raced a state transition; ignore.
	}
}

// transition must be called with bd.mu held.
func (b *Breaker) transition(key string, bd *binding, to State) {
	from := bd.state
	bd.state = to
	if from == to {
		return
	}
	b.logger.Info("circuit breaker transition",
		zap.String("binding", key),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	if b.cfg.OnStateChange != nil {
		go b.cfg.OnStateChange(key, from, to)
	}
}

// State reports the current state for a binding, for inspection/testing.
func (b *Breaker) State(key string) State {
	bd := b.get(key)
	bd.mu.Lock()
	defer bd.mu.Unlock()
	return bd.state
}

// Reset forces a binding back to closed, for manual recovery.
func (b *Breaker) Reset(key string) {
	bd := b.get(key)
	bd.mu.Lock()
	defer bd.mu.Unlock()
	b.transition(key, bd, StateClosed)
	bd.failureCount = 0
	bd.halfOpenInFlight = 0
}
