// Package migrations applies the WanderWise schema with golang-migrate.
package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	migrationsCounter   metric.Int64Counter
	migrationsCounterMu sync.Once
)

// Up applies every pending migration to the database reachable via dsn.
// A nil logger disables informational logging.
func Up(ctx context.Context, dsn string, logger *slog.Logger) error {
	return run(ctx, dsn, logger, "up", func(m *migrate.Migrate) error {
		return m.Up()
	})
}

// Down rolls back the given number of migrations.
func Down(ctx context.Context, dsn string, steps int, logger *slog.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("migrations: down steps must be positive, got %d", steps)
	}
	return run(ctx, dsn, logger, "down", func(m *migrate.Migrate) error {
		return m.Steps(-steps)
	})
}

func run(ctx context.Context, dsn string, logger *slog.Logger, direction string, step func(*migrate.Migrate) error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migrations connection: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Warn("database migrations close", "error", cerr)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping migrations database: %w", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		return err
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			logger.Warn("database migrations source close", "error", sourceErr)
		}
		if dbErr != nil {
			logger.Warn("database migrations db close", "error", dbErr)
		}
	}()

	logger.Info("running database migrations", "direction", direction)

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			recordMigrationMetric(ctx, direction, "noop")
			logger.Info("database migrations up-to-date")
			return nil
		}
		recordMigrationMetric(ctx, direction, "failed")
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		logger.Info("database migrations applied", "direction", direction, "version", "none")
	case verr != nil:
		logger.Warn("database migrations version", "error", verr)
	default:
		logger.Info("database migrations applied", "direction", direction, "version", version, "dirty", dirty)
	}
	recordMigrationMetric(ctx, direction, "applied")

	return nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}

	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("initialise pgx v5 driver: %w", err)
	}

	return assemble(src, driver)
}

var newWithInstance = migrate.NewWithInstance

// assemble builds the migrate instance, closing src and driver if that
// fails.
func assemble(src source.Driver, driver database.Driver) (*migrate.Migrate, error) {
	m, err := newWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, errors.Join(
			fmt.Errorf("initialise migrate instance: %w", err),
			closeErr("database driver", driver.Close()),
			closeErr("migration source", src.Close()),
		)
	}
	return m, nil
}

func closeErr(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("close %s: %w", what, err)
}

func recordMigrationMetric(ctx context.Context, direction, result string) {
	migrationsCounterMu.Do(func() {
		meter := otel.Meter("github.com/wanderwise/pgdb/migrations")
		counter, err := meter.Int64Counter("wanderwise_db_migrations_total",
			metric.WithDescription("Total migrations executed via golang-migrate"),
			metric.WithUnit("{migration}"))
		if err == nil {
			migrationsCounter = counter
		}
	})
	if migrationsCounter == nil {
		return
	}
	migrationsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("result", result),
	))
}
