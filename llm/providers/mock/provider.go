// Package mock provides a reference llm.Provider implementation backed by
// canned responses, for wiring tests and example programs without a real
// vendor SDK.
package mock

import (
	"context"
	"time"

	"github.com/llmrouter/core/llm"
)

// Responder produces a chat completion for a request. Implementations may
// inspect req.Messages to vary their answer.
type Responder func(req *llm.ChatRequest) (*llm.ChatResponse, error)

// Provider is a scriptable llm.Provider: each call to Chat invokes
// Respond, and Stream (if StreamDeltas is set) emits a canned delta
// sequence with a configurable per-delta delay.
type Provider struct {
	Name    string
	Respond Responder
	Prices  map[string]llm.PriceTable

	StreamDeltas []llm.ChatDelta
	StreamDelay  time.Duration
}

// New creates a Provider with a static successful response.
func New(name, content string) *Provider {
	return &Provider{
		Name: name,
		Respond: func(req *llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{Content: content}, nil
		},
	}
}

func (p *Provider) ID() string { return p.Name }

func (p *Provider) PriceTable(model string) (llm.PriceTable, bool) {
	pt, ok := p.Prices[model]
	return pt, ok
}

func (p *Provider) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if p.Respond == nil {
		return nil, llm.NewError(llm.KindConfigError, "mock provider has no Respond configured")
	}
	return p.Respond(req)
}

func (p *Provider) Stream(ctx context.Context, req *llm.ChatRequest) (<-chan llm.ChatDelta, error) {
	if len(p.StreamDeltas) == 0 {
		return nil, llm.ErrStreamingUnsupported
	}

	out := make(chan llm.ChatDelta, len(p.StreamDeltas))
	go func() {
		defer close(out)
		for _, d := range p.StreamDeltas {
			if p.StreamDelay > 0 {
				select {
				case <-time.After(p.StreamDelay):
				case <-ctx.Done():
					return
				}
			}
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
