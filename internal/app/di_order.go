package app

import (
	"fmt"

	"github.com/allisson/orderflow/internal/database"
	orderHTTP "github.com/allisson/orderflow/internal/order/http"
	orderRepository "github.com/allisson/orderflow/internal/order/repository"
	orderUsecase "github.com/allisson/orderflow/internal/order/usecase"
	outboxRepository "github.com/allisson/orderflow/internal/outbox/repository"
	outboxUsecase "github.com/allisson/orderflow/internal/outbox/usecase"
)

// outboxEventStore is the full outbox table surface shared by intake, the relay and the janitor.
type outboxEventStore interface {
	orderUsecase.OutboxEventRepository
	outboxUsecase.OutboxEventRepository
	outboxUsecase.StuckEventRepository
}

// OrderRepository returns the order repository for the configured database driver.
func (c *Container) OrderRepository() (orderUsecase.OrderRepository, error) {
	var err error
	c.orderRepoInit.Do(func() {
		c.orderRepo, err = c.initOrderRepository()
		if err != nil {
			c.initErrors["orderRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderRepo"]; exists {
		return nil, storedErr
	}
	return c.orderRepo, nil
}

// OutboxRepository returns the outbox event repository for the configured database driver.
func (c *Container) OutboxRepository() (outboxEventStore, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// OrderUseCase returns the order use case, decorated with metrics when enabled.
func (c *Container) OrderUseCase() (orderUsecase.OrderUseCase, error) {
	var err error
	c.orderUseCaseInit.Do(func() {
		c.orderUseCase, err = c.initOrderUseCase()
		if err != nil {
			c.initErrors["orderUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderUseCase"]; exists {
		return nil, storedErr
	}
	return c.orderUseCase, nil
}

// OrderHandler returns the HTTP handler for order intake.
func (c *Container) OrderHandler() (*orderHTTP.OrderHandler, error) {
	var err error
	c.orderHandlerInit.Do(func() {
		c.orderHandler, err = c.initOrderHandler()
		if err != nil {
			c.initErrors["orderHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["orderHandler"]; exists {
		return nil, storedErr
	}
	return c.orderHandler, nil
}

func (c *Container) initOrderRepository() (orderUsecase.OrderRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for order repository: %w", err)
	}

	dialect, err := database.Dialect(c.config.DBDriver)
	if err != nil {
		return nil, err
	}

	if dialect == database.DialectMySQL {
		return orderRepository.NewMySQLOrderRepository(db), nil
	}
	return orderRepository.NewPostgreSQLOrderRepository(db), nil
}

func (c *Container) initOutboxRepository() (outboxEventStore, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	dialect, err := database.Dialect(c.config.DBDriver)
	if err != nil {
		return nil, err
	}

	if dialect == database.DialectMySQL {
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	}
	return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
}

func (c *Container) initOrderUseCase() (orderUsecase.OrderUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for order use case: %w", err)
	}

	orderRepo, err := c.OrderRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get order repository for order use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for order use case: %w", err)
	}

	baseUseCase := orderUsecase.NewOrderUseCase(txManager, orderRepo, outboxRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for order use case: %w", err)
		}
		return orderUsecase.NewOrderUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initOrderHandler() (*orderHTTP.OrderHandler, error) {
	useCase, err := c.OrderUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get order use case for order handler: %w", err)
	}
	return orderHTTP.NewOrderHandler(useCase, c.Logger()), nil
}
