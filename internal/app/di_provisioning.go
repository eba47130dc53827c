package app

import (
	"context"
	"fmt"

	"github.com/allisson/orderflow/internal/provisioning"
	"github.com/allisson/orderflow/internal/registry"
	"github.com/allisson/orderflow/internal/topics"
)

// ProvisioningSource returns the bucket holding topic definitions and schemas.
// It is closed by Shutdown.
func (c *Container) ProvisioningSource() (*provisioning.Source, error) {
	var err error
	c.provisioningSourceInit.Do(func() {
		c.provisioningSource, err = provisioning.OpenSource(context.Background(), c.config.ProvisioningSource)
		if err != nil {
			c.initErrors["provisioningSource"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["provisioningSource"]; exists {
		return nil, storedErr
	}
	return c.provisioningSource, nil
}

// TopicProvisioner returns the Kafka topic provisioner.
func (c *Container) TopicProvisioner() (*topics.Provisioner, error) {
	var err error
	c.topicProvisionerInit.Do(func() {
		c.topicProvisioner, err = c.initTopicProvisioner()
		if err != nil {
			c.initErrors["topicProvisioner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["topicProvisioner"]; exists {
		return nil, storedErr
	}
	return c.topicProvisioner, nil
}

// SchemaProvisioner returns the Avro schema provisioner.
func (c *Container) SchemaProvisioner() (*registry.SchemaProvisioner, error) {
	var err error
	c.schemaProvisionerInit.Do(func() {
		c.schemaProvisioner, err = c.initSchemaProvisioner()
		if err != nil {
			c.initErrors["schemaProvisioner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["schemaProvisioner"]; exists {
		return nil, storedErr
	}
	return c.schemaProvisioner, nil
}

func (c *Container) initTopicProvisioner() (*topics.Provisioner, error) {
	if len(c.config.KafkaBootstrapServers) == 0 {
		return nil, fmt.Errorf("kafka bootstrap servers are not configured")
	}

	source, err := c.ProvisioningSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get provisioning source for topic provisioner: %w", err)
	}

	provisionerConfig := topics.ProvisionerConfig{
		MaxRetries: c.config.TopicRegistrationMaxRetries,
		RetryDelay: c.config.TopicRegistrationRetryDelay,
		TopicsFile: c.config.TopicsFile,
	}

	admin := topics.NewAdminClient(c.config.KafkaBootstrapServers)
	return topics.NewProvisioner(provisionerConfig, admin, source, c.Logger()), nil
}

func (c *Container) initSchemaProvisioner() (*registry.SchemaProvisioner, error) {
	client, err := c.RegistryClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get registry client for schema provisioner: %w", err)
	}

	source, err := c.ProvisioningSource()
	if err != nil {
		return nil, fmt.Errorf("failed to get provisioning source for schema provisioner: %w", err)
	}

	provisionerConfig := registry.ProvisionerConfig{
		MaxRetries:    c.config.SchemaRegistrationMaxRetries,
		RetryDelay:    c.config.SchemaRegistrationRetryDelay,
		SchemasPrefix: c.config.SchemasPrefix,
	}

	return registry.NewSchemaProvisioner(provisionerConfig, client, source, c.Logger()), nil
}
