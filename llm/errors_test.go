package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_RetryableByKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind      Kind
		retryable bool
		breaker   bool
	}{
		{KindClientError, false, false},
		{KindAuthError, false, false},
		{KindRateLimited, true, true},
		{KindServerError, true, true},
		{KindNetworkError, true, true},
		{KindTimeout, true, true},
		{KindCanceled, false, false},
		{KindBreakerOpen, false, false},
		{KindConfigError, false, false},
		{KindAllFailed, false, false},
	}

	for _, tc := range cases {
		err := NewError(tc.kind, "boom")
		assert.Equal(t, tc.retryable, IsRetryable(err), "kind=%s", tc.kind)
		assert.Equal(t, tc.breaker, CountsAgainstBreaker(err), "kind=%s", tc.kind)
	}
}

func TestError_BuilderChain(t *testing.T) {
	t.Parallel()

	inner := errors.New("dial tcp: connection refused")
	err := NewError(KindNetworkError, "dial failed").
		WithCause(inner).
		WithBinding("openai:gpt-4o").
		WithRequestID("req-1").
		WithAttempts(3).
		WithRetryAfterMs(500)

	assert.Equal(t, "openai:gpt-4o", err.Binding)
	assert.Equal(t, "req-1", err.RequestID)
	assert.Equal(t, 3, err.Attempts)
	assert.EqualValues(t, 500, err.RetryAfterMs)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "dial failed")
}

func TestKindOf_NonClassifiedError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
