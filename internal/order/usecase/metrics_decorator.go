package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/orderflow/internal/metrics"
	"github.com/allisson/orderflow/internal/order/domain"
)

// orderUseCaseWithMetrics decorates OrderUseCase with metrics instrumentation.
type orderUseCaseWithMetrics struct {
	next    OrderUseCase
	metrics metrics.BusinessMetrics
}

// NewOrderUseCaseWithMetrics wraps an OrderUseCase with metrics recording.
func NewOrderUseCaseWithMetrics(useCase OrderUseCase, m metrics.BusinessMetrics) OrderUseCase {
	return &orderUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// PlaceOrder records metrics for order intake.
func (o *orderUseCaseWithMetrics) PlaceOrder(
	ctx context.Context,
	customerID uuid.UUID,
	items []domain.OrderItem,
) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.PlaceOrder(ctx, customerID, items)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "orders", "order_place", status)
	o.metrics.RecordDuration(ctx, "orders", "order_place", time.Since(start), status)

	return order, err
}

// GetOrder records metrics for order lookups.
func (o *orderUseCaseWithMetrics) GetOrder(ctx context.Context, shortCode string) (*domain.Order, error) {
	start := time.Now()
	order, err := o.next.GetOrder(ctx, shortCode)

	status := "success"
	if err != nil {
		status = "error"
	}

	o.metrics.RecordOperation(ctx, "orders", "order_get", status)
	o.metrics.RecordDuration(ctx, "orders", "order_get", time.Since(start), status)

	return order, err
}
