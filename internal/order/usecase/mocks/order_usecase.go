// Package mocks provides mock implementations of the order use case interfaces for testing.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/orderflow/internal/order/domain"
	outboxDomain "github.com/allisson/orderflow/internal/outbox/domain"
)

// MockOrderUseCase is a mock implementation of OrderUseCase for testing.
type MockOrderUseCase struct {
	mock.Mock
}

// PlaceOrder mocks the PlaceOrder method of OrderUseCase.
func (m *MockOrderUseCase) PlaceOrder(
	ctx context.Context,
	customerID uuid.UUID,
	items []domain.OrderItem,
) (*domain.Order, error) {
	args := m.Called(ctx, customerID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// GetOrder mocks the GetOrder method of OrderUseCase.
func (m *MockOrderUseCase) GetOrder(ctx context.Context, shortCode string) (*domain.Order, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockOrderRepository is a mock implementation of OrderRepository for testing.
type MockOrderRepository struct {
	mock.Mock
}

// Create mocks the Create method of OrderRepository.
func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// GetByShortCode mocks the GetByShortCode method of OrderRepository.
func (m *MockOrderRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.Order, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository for testing.
type MockOutboxEventRepository struct {
	mock.Mock
}

// Create mocks the Create method of OutboxEventRepository.
func (m *MockOutboxEventRepository) Create(ctx context.Context, event *outboxDomain.OutboxEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockTxManager is a mock implementation of database.TxManager that runs fn unless an
// error is configured.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method of database.TxManager.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}
