package streaming

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_SendThenRecvDeliversInOrder(t *testing.T) {
	t.Parallel()

	r := NewRelay[string](4)
	ctx := context.Background()

	require.NoError(t, r.Send(ctx, "a"))
	require.NoError(t, r.Send(ctx, "b"))

	v, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestRelay_SendBlocksUntilConsumed(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](1)
	ctx := context.Background()
	require.NoError(t, r.Send(ctx, 1))

	sent := make(chan error, 1)
	go func() { sent <- r.Send(ctx, 2) }()

	select {
	case <-sent:
		t.Fatal("Send should block while the buffer is full and unread")
	case <-time.After(20 * time.Millisecond):
	}

	v, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	select {
	case err := <-sent:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Send did not unblock after Recv drained the buffer")
	}
}

func TestRelay_SendReturnsCtxErrOnCancellation(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](1)
	require.NoError(t, r.Send(context.Background(), 1)) // fill the buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Send(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelay_CloseUnblocksPendingSendAndRecv(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](1)
	ctx := context.Background()

	sendErr := make(chan error, 1)
	go func() {
		require.NoError(t, r.Send(ctx, 1))
		sendErr <- r.Send(ctx, 2) // blocks: buffer full, nobody reads
	}()

	time.Sleep(20 * time.Millisecond)
	r.Close()

	select {
	case err := <-sendErr:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock pending Send")
	}

	// The value buffered before Close is still delivered; only then does
	// Recv report the closed relay.
	v, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = r.Recv(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRelay_SendAfterCloseReturnsErrClosed(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](1)
	r.Close()
	assert.ErrorIs(t, r.Send(context.Background(), 1), ErrClosed)
}

func TestRelay_ChanRangesUntilClose(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](2)
	ctx := context.Background()
	require.NoError(t, r.Send(ctx, 1))
	require.NoError(t, r.Send(ctx, 2))
	r.Close()

	var got []int
	for v := range r.Chan() {
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2}, got)
}

func TestRelay_StatsTracksProducedAndConsumed(t *testing.T) {
	t.Parallel()

	r := NewRelay[int](4)
	ctx := context.Background()
	require.NoError(t, r.Send(ctx, 1))
	require.NoError(t, r.Send(ctx, 2))
	_, _ = r.Recv(ctx)

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Produced)
	assert.Equal(t, int64(1), stats.Consumed)
}
