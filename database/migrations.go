// Package database embeds the schema migrations and runs them with golang-migrate.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// scheme
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// GetMigrate returns a migrate instance for connString, which must use the pgx5:// scheme.
// The caller must Close it.
func GetMigrate(connString string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending migrations
func MigrateUp(ctx context.Context, connString string) error {
	return run(ctx, connString, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back the given number of migrations. Zero or less rolls back everything.
func MigrateDown(ctx context.Context, connString string, steps int) error {
	return run(ctx, connString, func(m *migrate.Migrate) error {
		if steps <= 0 {
			return m.Down()
		}
		return m.Steps(-steps)
	})
}

// Version reports the current schema version
func Version(connString string) (uint, bool, error) {
	m, err := GetMigrate(connString)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrate(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func run(ctx context.Context, connString string, step func(*migrate.Migrate) error) error {
	m, err := GetMigrate(connString)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	// Stops the migration after the current step when ctx ends
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case m.GracefulStop <- true:
			default:
			}
		case <-done:
		}
	}()

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.InfoContext(ctx, "Database schema already up to date")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	slog.InfoContext(ctx, "Database migration completed", "version", version, "dirty", dirty)
	return nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		slog.Warn("Failed to close migrate instance", "error", err)
	}
}
