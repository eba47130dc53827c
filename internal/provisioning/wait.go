package provisioning

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/allisson/orderflow/internal/errors"
)

// WaitFor calls probe until it succeeds, waiting delay between attempts and giving up
// after maxAttempts attempts. The last probe error is wrapped as ErrUnavailable.
func WaitFor(
	ctx context.Context,
	name string,
	maxAttempts int,
	delay time.Duration,
	logger *slog.Logger,
	probe func(ctx context.Context) error,
) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1)), //nolint:gosec // checked above
		ctx,
	)

	attempt := 0
	operation := func() error {
		attempt++
		return probe(ctx)
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("dependency not ready yet",
			slog.String("dependency", name),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("retry_in", next),
			slog.Any("error", err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperrors.Wrapf(apperrors.ErrUnavailable, "%s not ready after %d attempts: %v", name, attempt, err)
	}

	logger.Info("dependency is ready", slog.String("dependency", name), slog.Int("attempts", attempt))
	return nil
}
