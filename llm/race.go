package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Race dispatches every request concurrently and returns the first success.
// The first success cancels every sibling still in flight; a sibling error
// arriving after a winner has already been decided is discarded (logged at
// debug level only). If the caller's ctx is canceled before any leg succeeds,
// Race returns that Canceled error unchanged rather than wrapping it in
// KindAllFailed. Otherwise, if every request fails, returns a KindAllFailed
// error carrying each request's cause in dispatch order.
func Race(ctx context.Context, reqs []FallbackRequest) (*ChatResponse, error) {
	if len(reqs) == 0 {
		return nil, NewError(KindConfigError, "race requires at least one request")
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	causes := make([]*Error, len(reqs))
	var winner *ChatResponse
	var winnerOnce sync.Once

	g, gctx := errgroup.WithContext(raceCtx)
	for i, r := range reqs {
		i, r := i, r
		g.Go(func() error {
			resp, err := r.Orchestrator.Chat(gctx, r.Request)
			if err != nil {
				causes[i] = classify(err)
				if raceCtx.Err() != nil && ctx.Err() == nil && r.Orchestrator.logger != nil {
					r.Orchestrator.logger.Debug("race sibling error suppressed after winner",
						zap.String("request_id", r.Request.RequestID), zap.Error(err))
				}
				return nil
			}
			winnerOnce.Do(func() {
				winner = resp
				cancel()
			})
			return nil
		})
	}
	_ = g.Wait()

	if winner != nil {
		return winner, nil
	}

	if ctx.Err() != nil {
		return nil, classify(ctx.Err())
	}

	ordered := make([]*Error, 0, len(causes))
	for _, c := range causes {
		if c != nil {
			ordered = append(ordered, c)
		}
	}
	return nil, NewError(KindAllFailed, "all racing calls failed").WithCauses(ordered)
}
