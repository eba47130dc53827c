package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/orderflow/internal/metrics"
	"github.com/allisson/orderflow/internal/order/domain"
	"github.com/allisson/orderflow/internal/order/usecase/mocks"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordBatchSize(ctx context.Context, domain, operation string, size int) {
	m.Called(ctx, domain, operation, size)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

func TestNewOrderUseCaseWithMetrics(t *testing.T) {
	decorator := NewOrderUseCaseWithMetrics(&mocks.MockOrderUseCase{}, &mockBusinessMetrics{})

	assert.NotNil(t, decorator)
	assert.Implements(t, (*OrderUseCase)(nil), decorator)
}

func TestMetricsDecorator_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.Must(uuid.NewV7())
	items := []domain.OrderItem{{ProductID: uuid.Must(uuid.NewV7()), Count: 1}}

	tests := []struct {
		name   string
		order  *domain.Order
		err    error
		status string
	}{
		{name: "Success_RecordsSuccessMetrics", order: &domain.Order{OrderShortCode: "ABCDEFGH23"}, status: "success"},
		{name: "Error_RecordsErrorMetrics", err: assert.AnError, status: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &mocks.MockOrderUseCase{}
			m := &mockBusinessMetrics{}

			next.On("PlaceOrder", ctx, customerID, items).Return(tt.order, tt.err).Once()
			m.On("RecordOperation", ctx, "orders", "order_place", tt.status).Return().Once()
			m.On("RecordDuration", ctx, "orders", "order_place", mock.AnythingOfType("time.Duration"), tt.status).
				Return().
				Once()

			order, err := NewOrderUseCaseWithMetrics(next, m).PlaceOrder(ctx, customerID, items)

			assert.Equal(t, tt.order, order)
			assert.Equal(t, tt.err, err)
			next.AssertExpectations(t)
			m.AssertExpectations(t)
		})
	}
}

func TestMetricsDecorator_GetOrder(t *testing.T) {
	ctx := context.Background()
	next := &mocks.MockOrderUseCase{}
	m := &mockBusinessMetrics{}

	next.On("GetOrder", ctx, "ABCDEFGH23").Return(nil, domain.ErrOrderNotFound).Once()
	m.On("RecordOperation", ctx, "orders", "order_get", "error").Return().Once()
	m.On("RecordDuration", ctx, "orders", "order_get", mock.AnythingOfType("time.Duration"), "error").Return().Once()

	order, err := NewOrderUseCaseWithMetrics(next, m).GetOrder(ctx, "ABCDEFGH23")

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	m.AssertExpectations(t)
}
