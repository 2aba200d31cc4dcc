package worker

import (
	"context"
	"log/slog"
	"time"
)

// retryWithBackoff retries op with exponential backoff, doubling baseDelay
// after each failed attempt. Returns the last error once the budget is spent,
// or the context error if the context ends first.
func retryWithBackoff(ctx context.Context, op func() error, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		logger.Debug("operation failed, backing off",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
