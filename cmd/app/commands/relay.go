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

// RunRelay runs the outbox relay and the janitor as a standalone process. Several relay
// processes can run against the same database; row locking keeps their batches disjoint.
func RunRelay(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting outbox relay process", slog.String("version", version))

	defer closeContainer(container, logger)

	loops, err := outboxLoops(container)
	if err != nil {
		return err
	}

	statsLoops, err := kafkaStatsLoops(container)
	if err != nil {
		return err
	}
	loops = append(loops, statsLoops...)

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

	return runServices(ctx, logger, cfg.DBConnMaxLifetime, servers, loops)
}
