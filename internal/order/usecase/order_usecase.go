package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/database"
	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/order/domain"
	outboxDomain "github.com/allisson/orderflow/internal/outbox/domain"
)

// maxShortCodeAttempts bounds retries after a short code collision.
const maxShortCodeAttempts = 3

type orderUseCase struct {
	txManager  database.TxManager
	orderRepo  OrderRepository
	outboxRepo OutboxEventRepository
	now        func() time.Time
}

// NewOrderUseCase creates a new OrderUseCase.
func NewOrderUseCase(
	txManager database.TxManager,
	orderRepo OrderRepository,
	outboxRepo OutboxEventRepository,
) OrderUseCase {
	return &orderUseCase{
		txManager:  txManager,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

func validateOrder(customerID uuid.UUID, items []domain.OrderItem) error {
	if customerID == uuid.Nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "customer_id is required")
	}
	if len(items) == 0 {
		return domain.ErrEmptyOrder
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "product_id is required")
		}
		if item.Count <= 0 {
			return domain.ErrInvalidItemCount
		}
	}
	return nil
}

// PlaceOrder writes the order, its items and the ORDER_PLACED outbox event atomically.
// A short code collision is retried with a freshly generated code.
func (uc *orderUseCase) PlaceOrder(
	ctx context.Context,
	customerID uuid.UUID,
	items []domain.OrderItem,
) (*domain.Order, error) {
	if err := validateOrder(customerID, items); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxShortCodeAttempts; attempt++ {
		order, err := domain.NewOrder(customerID, items, uc.now())
		if err != nil {
			return nil, err
		}

		err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			if err := uc.orderRepo.Create(ctx, order); err != nil {
				return err
			}

			payload, err := json.Marshal(order)
			if err != nil {
				return apperrors.Wrap(err, "failed to marshal order payload")
			}

			event := outboxDomain.NewOutboxEvent(
				outboxDomain.EntityTypeOrder,
				order.OrderShortCode,
				outboxDomain.EventTypeOrderPlaced,
				outboxDomain.OrderPlacedVersion,
				string(payload),
				order.CreatedAt,
			)
			return uc.outboxRepo.Create(ctx, event)
		})
		if err == nil {
			return order, nil
		}
		if !apperrors.Is(err, domain.ErrOrderAlreadyExists) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// GetOrder retrieves an order by its short code.
func (uc *orderUseCase) GetOrder(ctx context.Context, shortCode string) (*domain.Order, error) {
	if !domain.IsValidShortCode(shortCode) {
		return nil, domain.ErrOrderNotFound
	}
	return uc.orderRepo.GetByShortCode(ctx, shortCode)
}
