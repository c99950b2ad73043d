package mock

import (
	"context"
	"testing"

	"github.com/llmrouter/core/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_ChatReturnsStaticResponse(t *testing.T) {
	t.Parallel()

	p := New("mock1", "hello")
	resp, err := p.Chat(context.Background(), &llm.ChatRequest{Model: "m1"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
}

func TestProvider_ChatWithoutResponderReturnsConfigError(t *testing.T) {
	t.Parallel()

	p := &Provider{Name: "mock1"}
	_, err := p.Chat(context.Background(), &llm.ChatRequest{Model: "m1"})
	require.Error(t, err)
	assert.Equal(t, llm.KindConfigError, err.(*llm.Error).Kind)
}

func TestProvider_StreamWithoutDeltasReturnsStreamingUnsupported(t *testing.T) {
	t.Parallel()

	p := &Provider{Name: "mock1"}
	_, err := p.Stream(context.Background(), &llm.ChatRequest{Model: "m1"})
	assert.ErrorIs(t, err, llm.ErrStreamingUnsupported)
}

func TestProvider_StreamEmitsConfiguredDeltasInOrder(t *testing.T) {
	t.Parallel()

	p := &Provider{
		Name:         "mock1",
		StreamDeltas: []llm.ChatDelta{{Content: "a"}, {Content: "b"}},
	}
	ch, err := p.Stream(context.Background(), &llm.ChatRequest{Model: "m1"})
	require.NoError(t, err)

	var got []string
	for d := range ch {
		got = append(got, d.Content)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}
