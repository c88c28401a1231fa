// Package db contains code for connecting to the database.
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailyreason/dailyreason/internal/config"
	"github.com/dailyreason/dailyreason/internal/db/sqlc"
)

const (
	defaultMaxConns        = 5
	defaultMinConns        = 0
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnectTimeout  = 10 * time.Second
)

// Connection wraps the pool and the query interface
type Connection struct {
	Pool    *pgxpool.Pool
	Queries *sqlc.Queries
}

// NewConnection opens a pool from cfg and verifies it with a ping
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg == nil {
		return nil, errors.New("database configuration is required")
	}

	connStr, err := cfg.GetConnectionString()
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.MaxConns = defaultMaxConns
	poolCfg.MinConns = defaultMinConns
	poolCfg.MaxConnLifetime = defaultConnMaxLifetime
	if poolCfg.ConnConfig.ConnectTimeout == 0 {
		poolCfg.ConnConfig.ConnectTimeout = defaultConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.InfoContext(ctx, "Database connection established", "database", cfg.Redacted())

	return &Connection{
		Pool:    pool,
		Queries: sqlc.New(pool),
	}, nil
}

// Close closes the pool
func (c *Connection) Close() {
	if c.Pool != nil {
		slog.Info("Closing database connection")
		c.Pool.Close()
	}
}

// Ping verifies the database connection is still alive
func (c *Connection) Ping(ctx context.Context) error {
	if c.Pool == nil {
		return errors.New("database connection is nil")
	}
	return c.Pool.Ping(ctx)
}
