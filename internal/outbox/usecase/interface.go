// Package usecase implements the outbox relay, which publishes claimed events to Kafka,
// and the janitor, which re-queues events whose relay died mid-batch.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/messaging"
	"github.com/allisson/orderflow/internal/outbox/domain"
)

// OutboxEventRepository defines the outbox operations used by the relay.
type OutboxEventRepository interface {
	ClaimBatch(ctx context.Context, eventType domain.EventType, batchSize, retryLimit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
	MarkFailed(ctx context.Context, failures map[uuid.UUID]string) error
}

// StuckEventRepository defines the outbox operations used by the janitor.
type StuckEventRepository interface {
	RequeueStuck(ctx context.Context, olderThan time.Time) (int64, error)
	CountStuck(ctx context.Context, olderThan time.Time) (int64, error)
}

// Producer publishes wire events and returns once the broker has acknowledged them.
type Producer interface {
	PublishOrderPlaced(ctx context.Context, event *messaging.OrderPlaced, metadata messaging.EventMetadata) error
}

// UseCase defines the periodic relay.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// JanitorUseCase defines the stuck-event sweeper.
type JanitorUseCase interface {
	Start(ctx context.Context) error
	Sweep(ctx context.Context) (int64, error)
	CountStuck(ctx context.Context) (int64, error)
}
