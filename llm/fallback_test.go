package llm

import (
	"context"
	"testing"

	"github.com/llmrouter/core/llm/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleAttemptOrchestrator(t *testing.T, providerKey string, fn func(req *ChatRequest) (*ChatResponse, error)) *Orchestrator {
	t.Helper()
	p := &scriptedProvider{id: providerKey, script: []func(req *ChatRequest) (*ChatResponse, error){fn}}
	return newTestOrchestrator(t, providerKey, p, config.RetryPolicy{MaxAttempts: 1, BaseMs: 1, MaxMs: 1})
}

func TestFallback_FirstSucceedsShortCircuits(t *testing.T) {
	t.Parallel()

	second := singleAttemptOrchestrator(t, "p2", alwaysFails(KindServerError))
	first := singleAttemptOrchestrator(t, "p1", alwaysSucceeds("first"))

	resp, err := Fallback(context.Background(), []FallbackRequest{
		{Orchestrator: first, Request: &ChatRequest{Model: "m1"}},
		{Orchestrator: second, Request: &ChatRequest{Model: "m1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)
}

func TestFallback_AdvancesPastFailureToNextEntry(t *testing.T) {
	t.Parallel()

	first := singleAttemptOrchestrator(t, "p1", alwaysFails(KindServerError))
	second := singleAttemptOrchestrator(t, "p2", alwaysSucceeds("second"))

	resp, err := Fallback(context.Background(), []FallbackRequest{
		{Orchestrator: first, Request: &ChatRequest{Model: "m1"}},
		{Orchestrator: second, Request: &ChatRequest{Model: "m1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)
}

func TestFallback_AllFailReturnsLastErrorUnchanged(t *testing.T) {
	t.Parallel()

	first := singleAttemptOrchestrator(t, "p1", alwaysFails(KindServerError))
	second := singleAttemptOrchestrator(t, "p2", alwaysFails(KindAuthError))

	_, err := Fallback(context.Background(), []FallbackRequest{
		{Orchestrator: first, Request: &ChatRequest{Model: "m1"}},
		{Orchestrator: second, Request: &ChatRequest{Model: "m1"}},
	})
	require.Error(t, err)
	assert.Equal(t, KindAuthError, err.(*Error).Kind)
}

func TestFallback_EmptyListReturnsConfigError(t *testing.T) {
	t.Parallel()

	_, err := Fallback(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, KindConfigError, err.(*Error).Kind)
}
