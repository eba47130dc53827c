// Package mocks provides mock implementations of the outbox use case interfaces for testing.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/orderflow/internal/messaging"
	"github.com/allisson/orderflow/internal/outbox/domain"
)

// MockOutboxEventRepository is a mock implementation of OutboxEventRepository.
type MockOutboxEventRepository struct {
	mock.Mock
}

// ClaimBatch mocks the ClaimBatch method.
func (m *MockOutboxEventRepository) ClaimBatch(
	ctx context.Context,
	eventType domain.EventType,
	batchSize, retryLimit int,
) ([]*domain.OutboxEvent, error) {
	args := m.Called(ctx, eventType, batchSize, retryLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OutboxEvent), args.Error(1)
}

// MarkPublished mocks the MarkPublished method.
func (m *MockOutboxEventRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MarkFailed mocks the MarkFailed method.
func (m *MockOutboxEventRepository) MarkFailed(ctx context.Context, failures map[uuid.UUID]string) error {
	args := m.Called(ctx, failures)
	return args.Error(0)
}

// MockStuckEventRepository is a mock implementation of StuckEventRepository.
type MockStuckEventRepository struct {
	mock.Mock
}

// RequeueStuck mocks the RequeueStuck method.
func (m *MockStuckEventRepository) RequeueStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// CountStuck mocks the CountStuck method.
func (m *MockStuckEventRepository) CountStuck(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockProducer is a mock implementation of Producer.
type MockProducer struct {
	mock.Mock
}

// PublishOrderPlaced mocks the PublishOrderPlaced method.
func (m *MockProducer) PublishOrderPlaced(
	ctx context.Context,
	event *messaging.OrderPlaced,
	metadata messaging.EventMetadata,
) error {
	args := m.Called(ctx, event, metadata)
	return args.Error(0)
}

// MockJanitorUseCase is a mock implementation of JanitorUseCase.
type MockJanitorUseCase struct {
	mock.Mock
}

// Start mocks the Start method.
func (m *MockJanitorUseCase) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Sweep mocks the Sweep method.
func (m *MockJanitorUseCase) Sweep(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// CountStuck mocks the CountStuck method.
func (m *MockJanitorUseCase) CountStuck(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
