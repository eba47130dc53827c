package app

import (
	"fmt"

	"github.com/allisson/orderflow/internal/fulfillment"
)

// FulfillmentService returns the service that processes consumed orders.
func (c *Container) FulfillmentService() *fulfillment.FulfillmentService {
	c.fulfillmentServiceInit.Do(func() {
		c.fulfillmentService = fulfillment.NewFulfillmentService(c.Logger())
	})
	return c.fulfillmentService
}

// WorkerPool returns the bounded worker pool. The caller starts it.
func (c *Container) WorkerPool() (*fulfillment.WorkerPool, error) {
	var err error
	c.workerPoolInit.Do(func() {
		c.workerPool, err = c.initWorkerPool()
		if err != nil {
			c.initErrors["workerPool"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["workerPool"]; exists {
		return nil, storedErr
	}
	return c.workerPool, nil
}

// Consumer returns the fulfillment consumer wired to the worker pool.
func (c *Container) Consumer() (*fulfillment.Consumer, error) {
	var err error
	c.consumerInit.Do(func() {
		c.consumer, err = c.initConsumer()
		if err != nil {
			c.initErrors["consumer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["consumer"]; exists {
		return nil, storedErr
	}
	return c.consumer, nil
}

func (c *Container) initWorkerPool() (*fulfillment.WorkerPool, error) {
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for worker pool: %w", err)
	}

	return fulfillment.NewWorkerPool(
		c.config.WorkerCount,
		c.config.QueueCapacity,
		c.FulfillmentService().FulfillOrder,
		businessMetrics,
		c.Logger(),
	)
}

func (c *Container) initConsumer() (*fulfillment.Consumer, error) {
	if err := c.config.ValidateConsumer(); err != nil {
		return nil, err
	}

	deserializer, err := c.Deserializer()
	if err != nil {
		return nil, fmt.Errorf("failed to get deserializer for consumer: %w", err)
	}

	pool, err := c.WorkerPool()
	if err != nil {
		return nil, fmt.Errorf("failed to get worker pool for consumer: %w", err)
	}

	c.kafkaReader = fulfillment.NewKafkaReader(c.config.KafkaBootstrapServers, c.config.KafkaTopic, c.config.GroupID)
	return fulfillment.NewConsumer(c.kafkaReader, deserializer, pool, c.Logger()), nil
}
