package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/superclaims/claims-processor/internal/common"
)

// retrySleep is overridable so retry tests run without real delays.
var retrySleep = time.Sleep

// Retrier wraps a Completer with exponential backoff on transient failures.
// Permanent failures (malformed output, refusals) return immediately so the
// caller can fall through to the next cascade tier.
type Retrier struct {
	next        Completer
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewRetrier builds a Retrier. maxAttempts <= 0 defaults to 3.
func NewRetrier(next Completer, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *Retrier {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	return &Retrier{next: next, maxAttempts: maxAttempts, baseDelay: baseDelay, logger: logger}
}

// Complete implements Completer.
func (r *Retrier) Complete(ctx context.Context, req Request) (Response, error) {
	var lastErr error
	delay := r.baseDelay

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !common.IsTransient(err) {
			r.logger.Warn("llm.retry.permanent", "attempt", attempt, "error", err)
			return Response{}, err
		}
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		if attempt < r.maxAttempts {
			r.logger.Warn("llm.retry.transient",
				"attempt", attempt, "max_attempts", r.maxAttempts, "backoff", delay.String(), "error", err)
			retrySleep(delay)
			delay *= 2
		}
	}
	return Response{}, lastErr
}
