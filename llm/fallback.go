package llm

import "context"

// FallbackRequest pairs a request with the orchestrator to send it through,
// letting a fallback chain span multiple logical models or even multiple
// Orchestrators (e.g. a cheaper model on one registry, a premium model on
// another).
type FallbackRequest struct {
	Orchestrator *Orchestrator
	Request      *ChatRequest
}

// Fallback tries each request in order, advancing to the next on any
// failure, and returns the first success. If every request fails, the last
// request's error is returned unchanged — fallback does not aggregate
// causes the way race and Map do, since only the final attempt's failure
// reflects the state the caller is left in.
func Fallback(ctx context.Context, reqs []FallbackRequest) (*ChatResponse, error) {
	if len(reqs) == 0 {
		return nil, NewError(KindConfigError, "fallback requires at least one request")
	}

	var lastErr error
	for _, r := range reqs {
		resp, err := r.Orchestrator.Chat(ctx, r.Request)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, classify(ctx.Err()).WithRequestID(r.Request.RequestID)
		}
	}
	return nil, lastErr
}
