package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// Connect opens the pool and verifies it with a bounded ping. Pool limits
// match the engine's write pattern: short transactions, no long-held
// connections.
func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(25)
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = pool.PingContext(ctx); err != nil {
		closeErr := pool.Close()
		return nil, errors.Join(
			fmt.Errorf("failed to ping database within %v: %w", timeout, err),
			closeErr,
		)
	}

	return pool, nil
}
