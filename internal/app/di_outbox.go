package app

import (
	"fmt"

	outboxUsecase "github.com/allisson/orderflow/internal/outbox/usecase"
)

// OutboxUseCase returns the outbox relay.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxUseCaseInit.Do(func() {
		c.outboxUseCase, err = c.initOutboxUseCase()
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.outboxUseCase, nil
}

// JanitorUseCase returns the stuck-event janitor.
func (c *Container) JanitorUseCase() (outboxUsecase.JanitorUseCase, error) {
	var err error
	c.janitorUseCaseInit.Do(func() {
		c.janitorUseCase, err = c.initJanitorUseCase()
		if err != nil {
			c.initErrors["janitorUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["janitorUseCase"]; exists {
		return nil, storedErr
	}
	return c.janitorUseCase, nil
}

func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	if err := c.config.ValidateRelay(); err != nil {
		return nil, err
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	producer, err := c.Producer()
	if err != nil {
		return nil, fmt.Errorf("failed to get producer for outbox use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxPollingInterval,
		BatchSize:  c.config.OutboxBatchSize,
		RetryLimit: c.config.OutboxRetryLimit,
	}

	return outboxUsecase.NewOutboxUseCase(useCaseConfig, outboxRepo, producer, businessMetrics, c.Logger()), nil
}

func (c *Container) initJanitorUseCase() (outboxUsecase.JanitorUseCase, error) {
	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for janitor use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for janitor use case: %w", err)
	}

	janitorConfig := outboxUsecase.JanitorConfig{
		Interval:       c.config.OutboxJanitorInterval,
		StuckThreshold: c.config.OutboxStuckThreshold,
	}

	return outboxUsecase.NewJanitorUseCase(janitorConfig, outboxRepo, businessMetrics, c.Logger()), nil
}
