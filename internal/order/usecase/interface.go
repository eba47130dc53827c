// Package usecase implements order intake: an order and its ORDER_PLACED outbox event
// are written in a single database transaction.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/order/domain"
	outboxDomain "github.com/allisson/orderflow/internal/outbox/domain"
)

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByShortCode(ctx context.Context, shortCode string) (*domain.Order, error)
}

// OutboxEventRepository defines the outbox operations used during order intake.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// OrderUseCase defines the interface for order business logic.
type OrderUseCase interface {
	// PlaceOrder persists a PENDING order together with its ORDER_PLACED outbox event.
	PlaceOrder(ctx context.Context, customerID uuid.UUID, items []domain.OrderItem) (*domain.Order, error)
	GetOrder(ctx context.Context, shortCode string) (*domain.Order, error)
}
