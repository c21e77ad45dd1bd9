package http

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultPollRate is how many times per second Run advances the engine.
// It stays well above 1/QuiescenceTimeout so the window is sampled finely.
const DefaultPollRate rate.Limit = 2000

// Run advances e until its request completes. A zero or infinite limit polls
// without pausing. If ctx ends first the request is cancelled and ctx's error
// returned.
func Run(ctx context.Context, e *Engine, limit rate.Limit) error {
	var limiter *rate.Limiter
	if limit > 0 && limit != rate.Inf {
		limiter = rate.NewLimiter(limit, 1)
	}

	for !e.Advance() {
		var err error
		if limiter != nil {
			err = limiter.Wait(ctx)
		} else {
			err = ctx.Err()
		}
		if err != nil {
			e.Cancel()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}
	return nil
}
