// Package database provides PostgreSQL connection pool management for PgArchive.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbsmedya/pgarchive/internal/config"
)

// Manager owns the single pgxpool.Pool an invocation uses for every
// catalog read, graph build, and archival transaction.
type Manager struct {
	Pool   *pgxpool.Pool
	config *config.DBConfig
}

// NewManager creates a database manager from configuration.
func NewManager(cfg *config.DBConfig) *Manager {
	return &Manager{config: cfg}
}

// Connect establishes the pool with retry-with-backoff, mirroring the
// original tooling's reconnect tolerance for a database that may still be
// warming up.
func (m *Manager) Connect(ctx context.Context) error {
	pool, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.Pool = pool
	return nil
}

func (m *Manager) connectWithRetry(ctx context.Context) (*pgxpool.Pool, error) {
	const maxRetries = 3
	backoff := time.Second

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		pool, err := pgxpool.New(ctx, BuildDSN(m.config))
		if err == nil {
			if pingErr := pool.Ping(ctx); pingErr == nil {
				return pool, nil
			} else {
				pool.Close()
				lastErr = pingErr
			}
		} else {
			lastErr = err
		}

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// BuildDSN constructs a Postgres keyword/value connection string.
func BuildDSN(cfg *config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=prefer",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName,
	)
}

// Close releases the pool.
func (m *Manager) Close() {
	if m.Pool != nil {
		m.Pool.Close()
	}
}

// Ping verifies the pool is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Pool == nil {
		return fmt.Errorf("pool not connected")
	}
	return m.Pool.Ping(ctx)
}
