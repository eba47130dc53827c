package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/orderflow/internal/database"
)

// RunMigrations applies all pending migrations for the dialect spoken by driver
// ("postgres" and "pgx" share the postgresql migrations). Returns nil if there is
// nothing to apply.
func RunMigrations(logger *slog.Logger, driver, connectionString string) error {
	logger.Info("running database migrations",
		slog.String("driver", driver),
	)

	dialect, _ := database.Dialect(driver)

	migrationsPath := "file://migrations/postgresql"
	if dialect == database.DialectMySQL {
		migrationsPath = "file://migrations/mysql"
	}

	m, err := migrate.New(migrationsPath, migrationURL(dialect, connectionString))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationURL turns a go-sql-driver/mysql DSN ("user:pass@tcp(host:3306)/db") into the
// mysql:// URL golang-migrate expects, so both share DB_CONNECTION_STRING. PostgreSQL
// connection strings are already URLs.
func migrationURL(dialect, connectionString string) string {
	if dialect == database.DialectMySQL && !strings.HasPrefix(connectionString, "mysql://") {
		return "mysql://" + connectionString
	}
	return connectionString
}
