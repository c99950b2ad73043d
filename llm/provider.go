// Package llm implements the core orchestrator of a multi-provider chat
// request router: binding selection, rate limiting, retry, circuit breaking,
// middleware, and the fallback/race/map composite call patterns.
package llm

import (
	"context"
	"time"

	"github.com/llmrouter/core/types"
)

// Re-exported for callers that only need the request/response shapes.
type (
	Message    = types.Message
	Role       = types.Role
	ToolCall   = types.ToolCall
	ToolSchema = types.ToolSchema
	ToolResult = types.ToolResult
)

const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
	RoleTool      = types.RoleTool
)

// Provider is the narrow capability every vendor adapter implements. It is
// responsible only for vendor protocol translation; it must not implement
// retry, rate limiting, or breaker logic — the orchestrator owns those.
type Provider interface {
	// Chat sends a synchronous chat request to a concrete model.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Stream sends a streaming chat request. Providers that cannot stream
	// return ErrStreamingUnsupported; the orchestrator surfaces it as a
	// ClientError.
	Stream(ctx context.Context, req *ChatRequest) (<-chan ChatDelta, error)

	// ID returns the provider's unique identifier within a registry.
	ID() string

	// PriceTable returns the provider's default per-model pricing, if any.
	// Used for cost accounting only when a response omits costUSD.
	PriceTable(model string) (PriceTable, bool)
}

// PriceTable is the USD-per-1000-token price of a model.
type PriceTable struct {
	InputPer1K  float64
	OutputPer1K float64
}

// Binding is a concrete (providerKey, modelName) pair addressable for
// admission control and breaker state.
type Binding struct {
	ProviderKey string
	Model       string
	Price       PriceTable
}

// Key returns the composite string that addresses this binding's limiter
// bucket and breaker state: "{providerKey}:{model}".
func (b Binding) Key() string {
	return b.ProviderKey + ":" + b.Model
}

// ChatRequest is a uniform chat completion request naming a logical model.
type ChatRequest struct {
	// RequestID identifies this call for events and error reporting. If
	// empty, the orchestrator assigns one.
	RequestID string

	// Model is a logical name: a concrete provider-local model name or an
	// alias registered with the provider registry.
	Model string

	// Provider, when set, bypasses registry resolution and addresses the
	// binding (Provider, Model) directly.
	Provider string

	Messages    []Message
	Temperature float32
	MaxTokens   int
	TopP        float32
	Tools       []ToolSchema
	Timeout     time.Duration
}

// ChatResponse is the result of a successful chat call.
type ChatResponse struct {
	Content  string
	Tokens   TokenCounts
	CostUSD  float64
	Provider string
	Model    string
	Raw      any
}

// TokenCounts holds optional prompt/completion token counts.
type TokenCounts struct {
	Input  int
	Output int
}

// ChatDelta is a single streaming response frame. A stream terminates
// normally when the channel is closed with no error buffered in the final
// delta's Err field.
type ChatDelta struct {
	Content string
	Raw     any
	Err     error
}

// ErrStreamingUnsupported is returned by Provider.Stream implementations
// that do not support streaming.
var ErrStreamingUnsupported = NewError(KindClientError, "provider does not support streaming")
