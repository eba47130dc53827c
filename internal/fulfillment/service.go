package fulfillment

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	orderDomain "github.com/allisson/orderflow/internal/order/domain"
)

// maxProcessingSeconds bounds the simulated fulfillment time (0 to 9 seconds).
const maxProcessingSeconds = 10

// FulfillmentService fulfills orders. Fulfillment is simulated by a random delay.
type FulfillmentService struct {
	logger *slog.Logger
	delay  func() time.Duration
}

// NewFulfillmentService creates a new FulfillmentService.
func NewFulfillmentService(logger *slog.Logger) *FulfillmentService {
	return &FulfillmentService{
		logger: logger,
		delay: func() time.Duration {
			return time.Duration(rand.IntN(maxProcessingSeconds)) * time.Second //nolint:gosec // not security sensitive
		},
	}
}

// FulfillOrder processes order. The delay is cut short when ctx is cancelled.
func (s *FulfillmentService) FulfillOrder(ctx context.Context, order *orderDomain.Order) error {
	s.logger.Info("processing order",
		slog.String("order_short_code", order.OrderShortCode),
		slog.String("customer_id", order.CustomerID.String()),
		slog.Int("item_count", order.ItemCount()),
	)

	timer := time.NewTimer(s.delay())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	s.logger.Info("completed processing order", slog.String("order_short_code", order.OrderShortCode))
	return nil
}
