package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	assert.Equal(t, 5, cfg.Threshold)
	assert.Equal(t, 30*time.Second, cfg.OpenDuration)
	assert.Equal(t, 1, cfg.HalfOpenProbes)
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half_open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(99).String())
}

func TestBreaker_ClosedToOpenOnThreshold(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 3, OpenDuration: time.Hour}, zap.NewNop())

	for i := 0; i < 2; i++ {
		require.NoError(t, b.BeforePass("x:m"))
		b.Record("x:m", false)
		assert.Equal(t, StateClosed, b.State("x:m"))
	}

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	assert.Equal(t, StateOpen, b.State("x:m"))
}

func TestBreaker_OpenRejectsUntilDurationElapses(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: 50 * time.Millisecond}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	require.Equal(t, StateOpen, b.State("x:m"))

	assert.ErrorIs(t, b.BeforePass("x:m"), ErrOpen)

	time.Sleep(80 * time.Millisecond)
	assert.NoError(t, b.BeforePass("x:m"))
	assert.Equal(t, StateHalfOpen, b.State("x:m"))
}

func TestBreaker_HalfOpenSuccessClosesAndResetsCounter(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: 50 * time.Millisecond, HalfOpenProbes: 1}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	time.Sleep(80 * time.Millisecond)

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", true)

	assert.Equal(t, StateClosed, b.State("x:m"))
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: 50 * time.Millisecond, HalfOpenProbes: 1}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	time.Sleep(80 * time.Millisecond)

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)

	assert.Equal(t, StateOpen, b.State("x:m"))
	assert.ErrorIs(t, b.BeforePass("x:m"), ErrOpen)
}

func TestBreaker_HalfOpenProbeLimitRejectsExtraCalls(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: 50 * time.Millisecond, HalfOpenProbes: 1}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	time.Sleep(80 * time.Millisecond)

	require.NoError(t, b.BeforePass("x:m")) // consumes the single probe slot
	assert.ErrorIs(t, b.BeforePass("x:m"), ErrOpen)
}

func TestBreaker_Reset(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: time.Hour}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)
	require.Equal(t, StateOpen, b.State("x:m"))

	b.Reset("x:m")
	assert.Equal(t, StateClosed, b.State("x:m"))
	assert.NoError(t, b.BeforePass("x:m"))
}

func TestBreaker_BindingsAreIsolated(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1, OpenDuration: time.Hour}, zap.NewNop())

	require.NoError(t, b.BeforePass("a:m"))
	b.Record("a:m", false)

	assert.Equal(t, StateOpen, b.State("a:m"))
	assert.Equal(t, StateClosed, b.State("b:m"))
	assert.NoError(t, b.BeforePass("b:m"))
}

func TestBreaker_OnStateChangeCallback(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var transitions []State

	b := New(Config{
		Threshold:    1,
		OpenDuration: time.Hour,
		OnStateChange: func(binding string, from, to State) {
			mu.Lock()
			transitions = append(transitions, to)
			mu.Unlock()
		},
	}, zap.NewNop())

	require.NoError(t, b.BeforePass("x:m"))
	b.Record("x:m", false)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, transitions, 1)
	assert.Equal(t, StateOpen, transitions[0])
}

func TestBreaker_ConcurrentSafety(t *testing.T) {
	t.Parallel()

	b := New(Config{Threshold: 1000, OpenDuration: time.Hour}, zap.NewNop())

	var wg sync.WaitGroup
	var admitted atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.BeforePass("x:m") == nil {
				admitted.Add(1)
				b.Record("x:m", true)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), admitted.Load())
	assert.Equal(t, StateClosed, b.State("x:m"))
}
