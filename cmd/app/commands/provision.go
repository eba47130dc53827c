package commands

import (
	"context"
	"fmt"
	"log/slog"
)

// RunProvisionTopics waits for the broker and creates the topics that do not exist yet.
func RunProvisionTopics(ctx context.Context, provisioner Provisioner, logger *slog.Logger) error {
	logger.Info("provisioning kafka topics")

	if err := provisioner.Run(ctx); err != nil {
		return fmt.Errorf("failed to provision topics: %w", err)
	}

	logger.Info("topic provisioning completed")
	return nil
}

// RunRegisterSchemas waits for the schema registry and registers every Avro schema file.
func RunRegisterSchemas(ctx context.Context, provisioner Provisioner, logger *slog.Logger) error {
	logger.Info("registering avro schemas")

	if err := provisioner.Run(ctx); err != nil {
		return fmt.Errorf("failed to register schemas: %w", err)
	}

	logger.Info("schema registration completed")
	return nil
}
