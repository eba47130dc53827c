package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allisson/orderflow/internal/app"
	"github.com/allisson/orderflow/internal/config"
)

// WorkerPool is the worker pool lifecycle driven by the consumer command.
type WorkerPool interface {
	Start(ctx context.Context)
	Wait()
}

// OrderConsumer polls the topic until its context ends.
type OrderConsumer interface {
	Run(ctx context.Context) error
}

// RunConsumer runs the fulfillment consumer and its worker pool until SIGINT/SIGTERM.
// GROUP_ID must be set.
func RunConsumer(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting fulfillment consumer",
		slog.String("version", version),
		slog.String("group_id", cfg.GroupID),
		slog.Int("worker_count", cfg.WorkerCount),
	)

	defer closeContainer(container, logger)

	consumer, err := container.Consumer()
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}

	pool, err := container.WorkerPool()
	if err != nil {
		return fmt.Errorf("failed to initialize worker pool: %w", err)
	}

	var servers []Server
	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loops, err := kafkaStatsLoops(container)
	if err != nil {
		return err
	}
	loops = append(loops, LoopFunc(func(ctx context.Context) error {
		return ConsumeOrders(ctx, pool, consumer, logger)
	}))

	return runServices(ctx, logger, cfg.DBConnMaxLifetime, servers, loops)
}

// ConsumeOrders starts the pool, runs the consumer and then waits for the workers to
// drain what was queued. The consumer closes the queue when it returns.
func ConsumeOrders(ctx context.Context, pool WorkerPool, consumer OrderConsumer, logger *slog.Logger) error {
	pool.Start(ctx)

	err := consumer.Run(ctx)

	logger.Info("waiting for queued orders to drain")
	pool.Wait()

	return err
}
