// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/orderflow/internal/app"
	"github.com/allisson/orderflow/internal/metrics"
)

const kafkaStatsInterval = 15 * time.Second

// Server is a network listener that serves until Shutdown is called.
type Server interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Loop is a background component that runs until its context is cancelled.
type Loop interface {
	Start(ctx context.Context) error
}

// LoopFunc adapts a function to Loop.
type LoopFunc func(ctx context.Context) error

// Start calls f(ctx).
func (f LoopFunc) Start(ctx context.Context) error {
	return f(ctx)
}

// Provisioner is a one-shot provisioning step.
type Provisioner interface {
	Run(ctx context.Context) error
}

// runServices runs servers and loops until ctx is cancelled or one of them fails, then
// shuts the servers down within shutdownTimeout. A loop that stops because ctx ended is
// not an error.
func runServices(
	ctx context.Context,
	logger *slog.Logger,
	shutdownTimeout time.Duration,
	servers []Server,
	loops []Loop,
) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, server := range servers {
		group.Go(func() error {
			return server.Start(groupCtx)
		})
	}

	for _, loop := range loops {
		group.Go(func() error {
			if err := loop.Start(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErrors []error
		for _, server := range servers {
			if err := server.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, err)
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return group.Wait()
}

// kafkaStatsLoops returns the Kafka stats sampler, or nothing when metrics are disabled.
// Call it after the Kafka clients the command uses have been initialized.
func kafkaStatsLoops(container *app.Container) ([]Loop, error) {
	kafkaMetrics, err := container.KafkaMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize kafka metrics: %w", err)
	}
	if kafkaMetrics == nil {
		return nil, nil
	}

	return []Loop{LoopFunc(func(ctx context.Context) error {
		return metrics.SampleKafkaStats(ctx, kafkaStatsInterval, container.SampleKafkaStats)
	})}, nil
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}
