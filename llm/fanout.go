package llm

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapResult is one input's outcome from Map: exactly one of Response or Err
// is set.
type MapResult struct {
	Response *ChatResponse
	Err      *Error
}

// Map dispatches every request with at most concurrency calls in flight at
// once, preserving input order in the returned slice regardless of
// completion order. If stopOnError is true, the first error cancels every
// call still in flight and Map returns that error immediately, discarding
// any results already completed. If false, Map always returns a full
// ordered slice of per-request results and a nil error.
func Map(ctx context.Context, reqs []FallbackRequest, concurrency int, stopOnError bool) ([]MapResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = len(reqs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	results := make([]MapResult, len(reqs))
	for i, r := range reqs {
		i, r := i, r
		g.Go(func() error {
			resp, err := r.Orchestrator.Chat(gctx, r.Request)
			if err != nil {
				cerr := classify(err)
				if stopOnError {
					return cerr
				}
				results[i] = MapResult{Err: cerr}
				return nil
			}
			results[i] = MapResult{Response: resp}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
