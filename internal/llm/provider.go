package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
)

// DefaultTimeout bounds a single provider call. Extraction of long invoices
// can take minutes.
const DefaultTimeout = 5 * time.Minute

// NewLimiter returns a limiter allowing rpm requests per minute, or nil when
// rpm is not positive.
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// WaitTurn blocks on limiter. A nil limiter never blocks.
func WaitTurn(ctx context.Context, limiter *rate.Limiter, provider string) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return extract.Unavailable(provider, "rate limit wait exceeds deadline", err)
	}
	return nil
}

// ClassifyError maps a transport failure onto the extractor error model.
// Cancellation of ctx is returned as is; everything else is unavailable.
func ClassifyError(ctx context.Context, provider string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", provider, ctxErr)
	}
	if extract.IsUnavailable(err) {
		return err
	}
	return extract.Unavailable(provider, "request failed", err)
}
