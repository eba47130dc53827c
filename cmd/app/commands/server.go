package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/allisson/orderflow/internal/app"
	"github.com/allisson/orderflow/internal/config"
)

// RunServer starts the order intake HTTP server with graceful shutdown support.
// The metrics server runs alongside it when metrics are enabled, and the outbox relay
// and janitor run in-process when OUTBOX_RELAY_ENABLED is set. Blocks until SIGINT/SIGTERM
// or a fatal error, then stops everything within DBConnMaxLifetime.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.Bool("outbox_relay_enabled", cfg.OutboxRelayEnabled),
	)

	defer closeContainer(container, logger)

	// Initializes the whole intake graph, including the database connection.
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	servers := []Server{server}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}
	if metricsServer != nil {
		servers = append(servers, metricsServer)
	}

	var loops []Loop
	if cfg.OutboxRelayEnabled {
		relayLoops, err := outboxLoops(container)
		if err != nil {
			return err
		}
		loops = append(loops, relayLoops...)

		statsLoops, err := kafkaStatsLoops(container)
		if err != nil {
			return err
		}
		loops = append(loops, statsLoops...)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return runServices(ctx, logger, cfg.DBConnMaxLifetime, servers, loops)
}

// outboxLoops returns the relay and the janitor.
func outboxLoops(container *app.Container) ([]Loop, error) {
	relay, err := container.OutboxUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize outbox relay: %w", err)
	}

	janitor, err := container.JanitorUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize outbox janitor: %w", err)
	}

	return []Loop{relay, janitor}, nil
}
