package llm

import "fmt"

// Kind is the closed set of classified error kinds an orchestrator call can
// surface. Every failure that crosses the provider boundary is mapped to
// exactly one of these before it is returned to the caller.
type Kind string

const (
	// KindClientError covers malformed requests, unknown models, and 4xx
	// responses from a provider other than 408/429. Not retryable, does
	// not count against the breaker.
	KindClientError Kind = "ClientError"
	// KindAuthError covers 401/403 responses. Not retryable.
	KindAuthError Kind = "AuthError"
	// KindRateLimited covers 429 or a provider-signaled quota error.
	// Retryable; honors RetryAfterMs.
	KindRateLimited Kind = "RateLimited"
	// KindServerError covers 5xx responses. Retryable.
	KindServerError Kind = "ServerError"
	// KindNetworkError covers DNS/TCP/TLS/connection-reset failures. Retryable.
	KindNetworkError Kind = "NetworkError"
	// KindTimeout covers an internal deadline exceeded. Retryable.
	KindTimeout Kind = "Timeout"
	// KindCanceled covers caller cancellation. Not retryable.
	KindCanceled Kind = "Canceled"
	// KindBreakerOpen covers a call short-circuited by the breaker. Not retryable.
	KindBreakerOpen Kind = "BreakerOpen"
	// KindConfigError covers an unknown binding or invalid orchestrator state.
	// Not retryable.
	KindConfigError Kind = "ConfigError"
	// KindAllFailed covers an exhausted race; carries ordered Causes.
	KindAllFailed Kind = "AllFailed"
)

// retryable reports whether errors of this kind may be retried by the retry
// executor, per the table in the orchestrator's error taxonomy.
func (k Kind) retryable() bool {
	switch k {
	case KindRateLimited, KindServerError, KindNetworkError, KindTimeout:
		return true
	default:
		return false
	}
}

// countsAgainstBreaker reports whether a failure of this kind should
// increment a binding's consecutive-failure counter.
func (k Kind) countsAgainstBreaker() bool {
	switch k {
	case KindRateLimited, KindServerError, KindNetworkError, KindTimeout:
		return true
	default:
		return false
	}
}

// Error is the structured, classified error every orchestrator call
// surfaces. No stack trace crosses the boundary.
type Error struct {
	Kind         Kind
	Message      string
	Binding      string
	RequestID    string
	Attempts     int
	Causes       []*Error
	RetryAfterMs int64
	Cause        error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCause attaches the underlying error that produced this classification.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithBinding records which binding produced the error.
func (e *Error) WithBinding(binding string) *Error {
	e.Binding = binding
	return e
}

// WithRequestID records the request the error occurred within.
func (e *Error) WithRequestID(requestID string) *Error {
	e.RequestID = requestID
	return e
}

// WithAttempts records how many attempts were made before surfacing.
func (e *Error) WithAttempts(attempts int) *Error {
	e.Attempts = attempts
	return e
}

// WithRetryAfterMs records a provider-signaled retry-after hint.
func (e *Error) WithRetryAfterMs(ms int64) *Error {
	e.RetryAfterMs = ms
	return e
}

// WithCauses attaches the ordered per-spec causes of an AllFailed error.
func (e *Error) WithCauses(causes []*Error) *Error {
	e.Causes = causes
	return e
}

// IsRetryable reports whether err is a classified *Error of a retryable kind.
func IsRetryable(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind.retryable()
}

// CountsAgainstBreaker reports whether err should be recorded as a breaker failure.
func CountsAgainstBreaker(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind.countsAgainstBreaker()
}

// KindOf extracts the Kind of a classified error, or "" if err is not one.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// RetryAfterOf extracts a retry-after hint in milliseconds, or 0 if absent.
func RetryAfterOf(err error) int64 {
	if e, ok := err.(*Error); ok {
		return e.RetryAfterMs
	}
	return 0
}
