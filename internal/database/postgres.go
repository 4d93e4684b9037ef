// Package database implements the private device registry on PostgreSQL.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

const (
	// migrationLockID is a PostgreSQL advisory lock ID for coordinating
	// migrations across instances.
	// Value: 0x6d6972726f72 ("mirror" in ASCII hex)
	migrationLockID             = 0x6d6972726f72
	migrationLockReleaseTimeout = 5 * time.Second
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS devices (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		short_code CHAR(8) NOT NULL,
		authorization_label TEXT NOT NULL DEFAULT 'geo-unrestricted',
		registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_connected_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_user_id ON devices(user_id, registered_at)`,
}

// RunMigrations applies the schema under an advisory lock so concurrent
// instances do not race on DDL.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), migrationLockReleaseTimeout)
		defer cancel()
		if _, err := conn.Exec(unlockCtx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			slog.Error("Failed to release migration lock", "error", err)
		}
	}()

	slog.Info("running database migrations")
	for _, migration := range migrations {
		if _, err := conn.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
