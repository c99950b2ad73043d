package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slowSucceeds(content string, delay time.Duration) func(req *ChatRequest) (*ChatResponse, error) {
	return func(req *ChatRequest) (*ChatResponse, error) {
		time.Sleep(delay)
		return &ChatResponse{Content: content}, nil
	}
}

// blockingProvider never completes on its own; Chat blocks until ctx is
// done and returns ctx.Err(), so tests can exercise caller cancellation
// without a winner ever being decided.
type blockingProvider struct{ id string }

func (p *blockingProvider) ID() string { return p.id }

func (p *blockingProvider) PriceTable(model string) (PriceTable, bool) { return PriceTable{}, false }

func (p *blockingProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (p *blockingProvider) Stream(ctx context.Context, req *ChatRequest) (<-chan ChatDelta, error) {
	return nil, ErrStreamingUnsupported
}

func TestRace_FastestSuccessWins(t *testing.T) {
	t.Parallel()

	slow := singleAttemptOrchestrator(t, "slow", slowSucceeds("slow", 50*time.Millisecond))
	fast := singleAttemptOrchestrator(t, "fast", slowSucceeds("fast", time.Millisecond))

	resp, err := Race(context.Background(), []FallbackRequest{
		{Orchestrator: slow, Request: &ChatRequest{Model: "m1"}},
		{Orchestrator: fast, Request: &ChatRequest{Model: "m1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "fast", resp.Content)
}

func TestRace_AllFailReturnsAllFailedWithOrderedCauses(t *testing.T) {
	t.Parallel()

	first := singleAttemptOrchestrator(t, "p1", alwaysFails(KindServerError))
	second := singleAttemptOrchestrator(t, "p2", alwaysFails(KindClientError))

	_, err := Race(context.Background(), []FallbackRequest{
		{Orchestrator: first, Request: &ChatRequest{Model: "m1"}},
		{Orchestrator: second, Request: &ChatRequest{Model: "m1"}},
	})
	require.Error(t, err)
	cerr := err.(*Error)
	assert.Equal(t, KindAllFailed, cerr.Kind)
	require.Len(t, cerr.Causes, 2)
	assert.Equal(t, KindServerError, cerr.Causes[0].Kind)
	assert.Equal(t, KindClientError, cerr.Causes[1].Kind)
}

func TestRace_CallerCancellationReturnsCanceledNotAllFailed(t *testing.T) {
	t.Parallel()

	first := newTestOrchestrator(t, "p1", &blockingProvider{id: "p1"}, fastRetryPolicy())
	second := newTestOrchestrator(t, "p2", &blockingProvider{id: "p2"}, fastRetryPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var resp *ChatResponse
	var err error
	go func() {
		resp, err = Race(ctx, []FallbackRequest{
			{Orchestrator: first, Request: &ChatRequest{Model: "m1"}},
			{Orchestrator: second, Request: &ChatRequest{Model: "m1"}},
		})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("race did not return after caller cancellation")
	}

	require.Error(t, err)
	assert.Nil(t, resp)
	cerr := err.(*Error)
	assert.Equal(t, KindCanceled, cerr.Kind)
	assert.NotEqual(t, KindAllFailed, cerr.Kind)
}

func TestRace_EmptyListReturnsConfigError(t *testing.T) {
	t.Parallel()

	_, err := Race(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, KindConfigError, err.(*Error).Kind)
}
