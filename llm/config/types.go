// Package config holds the normalized, in-memory configuration the
// orchestrator is constructed from. Parsing config files into this shape is
// explicitly out of scope; callers build it directly or via their own loader.
package config

// Policy selects how the registry resolves a logical model name to a binding
// when more than one is registered.
type Policy string

const (
	// PolicyFirst returns the first binding in registration order. Default.
	PolicyFirst Policy = "first"
	// PolicyRoundRobin advances a per-logical-name cursor on every resolve.
	PolicyRoundRobin Policy = "roundrobin"
	// PolicyCheapest returns the binding with the lowest combined
	// input+output per-1K price, ties broken by registration order.
	PolicyCheapest Policy = "cheapest"
)

// Limit is the per-binding token-bucket admission rule.
type Limit struct {
	// RPS is the sustained admission rate in requests per second. Must be > 0.
	RPS float64
	// Burst is the bucket capacity. Defaults to RPS (rounded up) when zero.
	Burst int
}

// RetryPolicy controls the retry executor's backoff schedule.
type RetryPolicy struct {
	MaxAttempts int
	BaseMs      int64
	MaxMs       int64
	Jitter      JitterMode
}

// JitterMode selects how the retry executor randomizes backoff delay.
type JitterMode string

const (
	JitterNone JitterMode = "none"
	JitterFull JitterMode = "full"
)

// DefaultRetryPolicy is the retry schedule applied when a caller leaves
// RetryPolicy zero-valued: 3 attempts, 1s base backoff doubling up to a
// 10s ceiling, with full jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseMs: 1000, MaxMs: 10000, Jitter: JitterFull}
}

// BreakerConfig controls the per-binding circuit breaker.
type BreakerConfig struct {
	FailureThreshold int
	OpenDurationMs   int64
	HalfOpenProbes   int
}

// DefaultBreakerConfig is the breaker configuration applied when a caller
// leaves BreakerConfig zero-valued: trips after 5 consecutive failures,
// stays open for 30s, then allows 1 half-open probe.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, OpenDurationMs: 30_000, HalfOpenProbes: 1}
}

// ModelEntry registers one concrete model and its aliases under a provider.
type ModelEntry struct {
	Name        string
	Aliases     []string
	InputPer1K  float64
	OutputPer1K float64
}

// ProviderEntry registers all the models a provider key exposes.
type ProviderEntry struct {
	Key    string
	Models []ModelEntry
}

// Config is the normalized configuration an Orchestrator is built from.
type Config struct {
	// Policy selects the registry's resolution strategy. Defaults to PolicyFirst.
	Policy Policy
	// Entries builds the provider registry's inverse index when passed to
	// NewRegistryFromConfig. The Orchestrator constructor does not read it;
	// it takes the registry as a separate argument.
	Entries []ProviderEntry
	// Limits maps a binding key ("{providerKey}:{model}") to its admission rule.
	Limits map[string]Limit
	// Retry is the default retry policy applied to every call.
	Retry RetryPolicy
	// Breaker is the default breaker configuration applied to every binding.
	Breaker BreakerConfig
	// TimeoutMs is the per-attempt deadline. Zero means no internal timeout.
	TimeoutMs int64
}

// Normalize fills zero-valued fields with their documented defaults.
func Normalize(cfg Config) Config {
	if cfg.Policy == "" {
		cfg.Policy = PolicyFirst
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.Breaker.FailureThreshold == 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}
	if cfg.Limits == nil {
		cfg.Limits = make(map[string]Limit)
	}
	return cfg
}
