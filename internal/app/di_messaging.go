package app

import (
	"fmt"

	"github.com/allisson/orderflow/internal/messaging"
	"github.com/allisson/orderflow/internal/metrics"
	"github.com/allisson/orderflow/internal/registry"
)

// RegistryClient returns the schema registry client.
func (c *Container) RegistryClient() (*registry.Client, error) {
	var err error
	c.registryClientInit.Do(func() {
		c.registryClient, err = c.initRegistryClient()
		if err != nil {
			c.initErrors["registryClient"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["registryClient"]; exists {
		return nil, storedErr
	}
	return c.registryClient, nil
}

// Serializer returns the Avro serializer for the configured topic.
func (c *Container) Serializer() (*messaging.Serializer, error) {
	var err error
	c.serializerInit.Do(func() {
		c.serializer, err = c.initSerializer()
		if err != nil {
			c.initErrors["serializer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["serializer"]; exists {
		return nil, storedErr
	}
	return c.serializer, nil
}

// Deserializer returns the Avro deserializer.
func (c *Container) Deserializer() (*messaging.Deserializer, error) {
	var err error
	c.deserializerInit.Do(func() {
		c.deserializer, err = c.initDeserializer()
		if err != nil {
			c.initErrors["deserializer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["deserializer"]; exists {
		return nil, storedErr
	}
	return c.deserializer, nil
}

// Producer returns the OrderPlaced producer. It is closed by Shutdown.
func (c *Container) Producer() (*messaging.Producer, error) {
	var err error
	c.producerInit.Do(func() {
		c.producer, err = c.initProducer()
		if err != nil {
			c.initErrors["producer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["producer"]; exists {
		return nil, storedErr
	}
	return c.producer, nil
}

// KafkaMetrics returns the Kafka client metrics, or nil when metrics are disabled.
func (c *Container) KafkaMetrics() (*metrics.KafkaMetrics, error) {
	var err error
	c.kafkaMetricsInit.Do(func() {
		c.kafkaMetrics, err = c.initKafkaMetrics()
		if err != nil {
			c.initErrors["kafkaMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kafkaMetrics"]; exists {
		return nil, storedErr
	}
	return c.kafkaMetrics, nil
}

// SampleKafkaStats exports the stats of the Kafka writer and reader created so far.
// Call it after Producer or Consumer has been initialized.
func (c *Container) SampleKafkaStats() {
	if c.kafkaMetrics == nil {
		return
	}
	if c.kafkaWriter != nil {
		c.kafkaMetrics.ObserveWriter(c.kafkaWriter.Stats())
	}
	if c.kafkaReader != nil {
		c.kafkaMetrics.ObserveReader(c.kafkaReader.Stats())
	}
}

func (c *Container) initKafkaMetrics() (*metrics.KafkaMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for kafka metrics: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return metrics.NewKafkaMetrics(provider.Registerer(), c.config.MetricsNamespace)
}

func (c *Container) initRegistryClient() (*registry.Client, error) {
	if c.config.KafkaSchemaRegistryURL == "" {
		return nil, fmt.Errorf("schema registry url is not configured")
	}
	// Request-level retries; waiting for a registry that is still starting is the provisioner's job.
	return registry.NewClient(c.config.KafkaSchemaRegistryURL, 3, c.Logger()), nil
}

func (c *Container) initSerializer() (*messaging.Serializer, error) {
	client, err := c.RegistryClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry client for serializer: %w", err)
	}
	return messaging.NewSerializer(client, c.config.KafkaTopic), nil
}

func (c *Container) initDeserializer() (*messaging.Deserializer, error) {
	client, err := c.RegistryClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry client for deserializer: %w", err)
	}
	return messaging.NewDeserializer(client), nil
}

func (c *Container) initProducer() (*messaging.Producer, error) {
	if err := c.config.ValidateKafka(); err != nil {
		return nil, err
	}

	serializer, err := c.Serializer()
	if err != nil {
		return nil, fmt.Errorf("failed to get serializer for producer: %w", err)
	}

	c.kafkaWriter = messaging.NewKafkaWriter(c.config.KafkaBootstrapServers, c.config.KafkaTopic)
	return messaging.NewProducer(c.kafkaWriter, serializer, c.Logger()), nil
}
