package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/messaging"
	"github.com/allisson/orderflow/internal/metrics"
	orderDomain "github.com/allisson/orderflow/internal/order/domain"
	"github.com/allisson/orderflow/internal/outbox/domain"
)

const metricsDomain = "outbox"

// Config holds outbox relay configuration.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	RetryLimit int
}

// OutboxUseCase relays ORDER_PLACED events from the outbox table to Kafka.
type OutboxUseCase struct {
	config     Config
	outboxRepo OutboxEventRepository
	producer   Producer
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase.
func NewOutboxUseCase(
	config Config,
	outboxRepo OutboxEventRepository,
	producer Producer,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:     config,
		outboxRepo: outboxRepo,
		producer:   producer,
		metrics:    businessMetrics,
		logger:     logger,
	}
}

// Start runs ProcessEvents every interval until ctx is cancelled. A failing tick is
// logged and the loop waits for the next one.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox relay",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("retry_limit", uc.config.RetryLimit),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox relay")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				if isCancellation(ctx, err) {
					uc.logger.Info("outbox tick interrupted by shutdown", slog.Any("error", err))
					continue
				}
				uc.logger.Error("failed to process outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims one batch, publishes each event in occurred_at order and then
// records every outcome. A failed event never aborts the rest of the batch.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	start := time.Now()

	events, err := uc.outboxRepo.ClaimBatch(ctx, domain.EventTypeOrderPlaced, uc.config.BatchSize, uc.config.RetryLimit)
	if err != nil {
		uc.recordTick(ctx, start, "error")
		return apperrors.Wrap(err, "failed to claim outbox events")
	}

	if len(events) == 0 {
		return nil
	}
	uc.metrics.RecordBatchSize(ctx, metricsDomain, "relay_claim", len(events))

	published := make([]uuid.UUID, 0, len(events))
	failures := make(map[uuid.UUID]string)

	for _, event := range events {
		if ctx.Err() != nil {
			failures[event.ID] = ctx.Err().Error()
			continue
		}

		if err := uc.publish(ctx, event); err != nil {
			level := slog.LevelError
			if isCancellation(ctx, err) {
				level = slog.LevelInfo
			}
			uc.logger.Log(ctx, level, "failed to publish outbox event",
				slog.String("event_id", event.ID.String()),
				slog.String("entity_id", event.EntityID),
				slog.Int("retry_count", event.RetryCount),
				slog.Any("error", err),
			)
			failures[event.ID] = err.Error()
			uc.metrics.RecordOperation(ctx, metricsDomain, "event_publish", "error")
			continue
		}

		published = append(published, event.ID)
		uc.metrics.RecordOperation(ctx, metricsDomain, "event_publish", "success")
	}

	// Outcomes are recorded even when the tick was cancelled mid-batch so that
	// published events do not linger in PROCESSING.
	if err := uc.recordOutcomes(context.WithoutCancel(ctx), published, failures); err != nil {
		uc.recordTick(ctx, start, "error")
		return err
	}

	uc.logger.Info("outbox batch processed",
		slog.Int("claimed", len(events)),
		slog.Int("published", len(published)),
		slog.Int("failed", len(failures)),
	)

	status := "success"
	if len(failures) > 0 {
		status = "partial"
	}
	uc.recordTick(ctx, start, status)
	return nil
}

func (uc *OutboxUseCase) publish(ctx context.Context, event *domain.OutboxEvent) error {
	var order orderDomain.Order
	if err := json.Unmarshal([]byte(event.Payload), &order); err != nil {
		return apperrors.Wrapf(messaging.ErrSerialization, "decode outbox payload: %v", err)
	}

	return uc.producer.PublishOrderPlaced(ctx, messaging.NewOrderPlaced(&order), messaging.MetadataFromOutboxEvent(event))
}

// recordOutcomes marks successes and failures in independent transactions, concurrently.
func (uc *OutboxUseCase) recordOutcomes(
	ctx context.Context,
	published []uuid.UUID,
	failures map[uuid.UUID]string,
) error {
	var g errgroup.Group

	if len(published) > 0 {
		g.Go(func() error {
			if err := uc.outboxRepo.MarkPublished(ctx, published); err != nil {
				return apperrors.Wrap(err, "failed to mark outbox events published")
			}
			return nil
		})
	}

	if len(failures) > 0 {
		g.Go(func() error {
			if err := uc.outboxRepo.MarkFailed(ctx, failures); err != nil {
				return apperrors.Wrap(err, "failed to mark outbox events failed")
			}
			return nil
		})
	}

	return g.Wait()
}

// isCancellation reports whether err comes from ctx being cancelled. Shutdown is not an
// error condition.
func isCancellation(ctx context.Context, err error) bool {
	return apperrors.Is(err, context.Canceled) || apperrors.Is(ctx.Err(), context.Canceled)
}

func (uc *OutboxUseCase) recordTick(ctx context.Context, start time.Time, status string) {
	uc.metrics.RecordOperation(ctx, metricsDomain, "relay_tick", status)
	uc.metrics.RecordDuration(ctx, metricsDomain, "relay_tick", time.Since(start), status)
}
