// Copyright 2024 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package llm implements the core orchestrator of a multi-provider chat
request router: binding selection, rate limiting, retry, circuit breaking,
middleware, and the fallback/race/map composite call patterns.

# Architecture

	┌─────────────────────────────────────────────────────────────┐
	│                      Orchestrator.Chat                      │
	├──────────────┬────────────┬─────────────┬───────────────────┤
	│  Registry    │  Breaker   │   Limiter   │   Retry executor  │
	│ (resolve)    │(BeforePass │  (Acquire)  │ (backoff+jitter)  │
	│              │  /Record)  │             │                   │
	├──────────────┴────────────┴─────────────┴───────────────────┤
	│                    middleware.Chain                         │
	│        (Logging, Recovery, Metrics, Tracing, ...)            │
	├───────────────────────────────────────────────────────────────┤
	│                      Provider interface                      │
	└───────────────────────────────────────────────────────────────┘

A call resolves a logical model name to a (provider, model) Binding, then
runs the reliability stack in a fixed order per attempt: breaker admission,
limiter admission, an optional per-attempt deadline, the provider call
itself, error classification, and breaker outcome recording. The retry
executor wraps all of this; the middleware chain wraps the retry executor.

# Provider Interface

The core Provider interface defines the narrow contract every vendor
adapter implements — protocol translation only, no retry/limiter/breaker
logic of its own:

	type Provider interface {
	    Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	    Stream(ctx context.Context, req *ChatRequest) (<-chan ChatDelta, error)
	    ID() string
	    PriceTable(model string) (PriceTable, bool)
	}

# Usage

Registering providers and resolving a logical model name through the
registry:

	registry := llm.NewRegistry(config.PolicyCheapest)
	registry.Add("openai", "gpt-4o", llm.PriceTable{InputPer1K: 0.005, OutputPer1K: 0.015})
	registry.AddAlias("default", "openai", "gpt-4o", llm.PriceTable{InputPer1K: 0.005, OutputPer1K: 0.015})

	orch := llm.New(cfg, registry, map[string]llm.Provider{"openai": openaiProvider},
	    llm.WithLogger(logger), llm.WithMetrics(metrics))

	resp, err := orch.Chat(ctx, &llm.ChatRequest{
	    Model:    "default",
	    Messages: []llm.Message{{Role: llm.RoleUser, Content: "Hello!"}},
	})

# Streaming

	deltas, err := orch.StreamChat(ctx, &llm.ChatRequest{Model: "default", Messages: messages})
	for d := range deltas {
	    if d.Err != nil {
	        break
	    }
	    fmt.Print(d.Content)
	}

# Composite call patterns

Fallback tries each request in order and returns the first success, or the
last failure unchanged:

	resp, err := llm.Fallback(ctx, []llm.FallbackRequest{
	    {Orchestrator: primary, Request: req},
	    {Orchestrator: backup, Request: req},
	})

Race dispatches every request concurrently, cancels the losers on the first
success, and returns a KindAllFailed error with ordered causes if every
request fails:

	resp, err := llm.Race(ctx, requests)

Map runs a bounded-concurrency fan-out, preserving input order:

	results, err := llm.Map(ctx, requests, 4, false)

# Error Handling

Every failure that crosses the provider boundary is classified into the
closed Kind taxonomy (ClientError, AuthError, RateLimited, ServerError,
NetworkError, Timeout, Canceled, BreakerOpen, ConfigError, AllFailed):

	if llm.IsRetryable(err) {
	    // the retry executor already retried this; it's exhausted if it got here
	}

# Subpackages

  - llm/config: normalized orchestrator configuration
  - llm/limiter: per-binding token-bucket admission control
  - llm/circuitbreaker: per-binding breaker with a decoupled BeforePass/Record API
  - llm/retry: exponential backoff with jitter
  - llm/middleware: onion-model hook chain
  - llm/streaming: cancellable channel relay for stream deltas
  - llm/observability: OpenTelemetry metrics/tracing and cost price tables
  - llm/tokenizer: token counting, with a tiktoken-backed exact counter and a generic estimator fallback
  - llm/providers/mock: a scriptable reference Provider for tests and examples
*/
package llm
