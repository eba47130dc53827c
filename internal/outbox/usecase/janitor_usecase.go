package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/orderflow/internal/metrics"
)

// JanitorConfig holds the stuck-event sweeper configuration.
type JanitorConfig struct {
	Interval       time.Duration
	StuckThreshold time.Duration
}

// janitorUseCase moves PROCESSING events whose claim is older than the threshold to
// FAILED, where the relay picks them up again while under the retry limit.
type janitorUseCase struct {
	config  JanitorConfig
	repo    StuckEventRepository
	metrics metrics.BusinessMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewJanitorUseCase creates a new JanitorUseCase.
func NewJanitorUseCase(
	config JanitorConfig,
	repo StuckEventRepository,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) JanitorUseCase {
	return &janitorUseCase{
		config:  config,
		repo:    repo,
		metrics: businessMetrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Start sweeps every interval until ctx is cancelled.
func (j *janitorUseCase) Start(ctx context.Context) error {
	j.logger.Info("starting outbox janitor",
		slog.Duration("interval", j.config.Interval),
		slog.Duration("stuck_threshold", j.config.StuckThreshold),
	)

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("stopping outbox janitor")
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("failed to requeue stuck outbox events", slog.Any("error", err))
			}
		}
	}
}

// Sweep re-queues stuck events and returns how many were moved.
func (j *janitorUseCase) Sweep(ctx context.Context) (int64, error) {
	count, err := j.repo.RequeueStuck(ctx, j.cutoff())
	if err != nil {
		j.metrics.RecordOperation(ctx, metricsDomain, "janitor_sweep", "error")
		return 0, err
	}

	if count > 0 {
		j.logger.Warn("requeued stuck outbox events", slog.Int64("count", count))
	}
	j.metrics.RecordOperation(ctx, metricsDomain, "janitor_sweep", "success")
	return count, nil
}

// CountStuck reports how many events Sweep would move.
func (j *janitorUseCase) CountStuck(ctx context.Context) (int64, error) {
	return j.repo.CountStuck(ctx, j.cutoff())
}

func (j *janitorUseCase) cutoff() time.Time {
	return j.now().UTC().Add(-j.config.StuckThreshold)
}
