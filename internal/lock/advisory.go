// Package lock provides Postgres advisory locking for PgArchive.
package lock

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Pool is satisfied by *pgxpool.Pool and by pgxmock's pool mock, letting
// tests exercise TryAcquire without a live database.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AdvisoryLock represents a session-scoped Postgres advisory lock,
// identified by the hashed name of the table it guards. Unlike MySQL's
// GET_LOCK(), pg_try_advisory_lock never blocks and takes no timeout: a
// caller either gets the lock immediately or doesn't.
type AdvisoryLock struct {
	pool     Pool
	lockName string
	held     bool
}

// NewAdvisoryLock creates a new advisory lock with the given name.
// The lock is not acquired until TryAcquire is called.
func NewAdvisoryLock(pool Pool, lockName string) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, lockName: lockName}
}

// GenerateJobLockName creates a consistent lock name for a PgArchive
// archival job, namespaced so it doesn't collide with advisory locks taken
// by unrelated code. Example: GenerateJobLockName("orders") -> "pgarchive:archive:orders"
func GenerateJobLockName(table string) string {
	return fmt.Sprintf("pgarchive:archive:%s", table)
}

// NewTableLock creates an advisory lock scoped to one table's archival,
// using GenerateJobLockName for the lock name.
func NewTableLock(pool Pool, table string) *AdvisoryLock {
	return NewAdvisoryLock(pool, GenerateJobLockName(table))
}

// TryAcquire attempts to acquire the lock without waiting. Returns true if
// acquired, false if another session already holds it. Returns an error
// only on a database failure.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	if a.held {
		return true, nil
	}

	var acquired bool
	err := a.pool.QueryRow(ctx, "SELECT pg_try_advisory_lock(hashtext($1))", a.lockName).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("pg_try_advisory_lock: %w", err)
	}

	a.held = acquired
	return acquired, nil
}

// Release releases the lock if held. Returns false without error if the
// lock wasn't held by this session.
func (a *AdvisoryLock) Release(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	var released bool
	err := a.pool.QueryRow(ctx, "SELECT pg_advisory_unlock(hashtext($1))", a.lockName).Scan(&released)
	if err != nil {
		return false, fmt.Errorf("pg_advisory_unlock: %w", err)
	}

	a.held = false
	return released, nil
}

// IsHeld returns true if this lock is currently held by this session.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire acquires a per-table advisory lock without blocking, returning
// a release func bound to the acquired lock. Callers that pass --force skip
// this and run unlocked, since PgArchive only warns about coordinating
// concurrent archivals rather than mandating it.
func TryAcquire(ctx context.Context, pool Pool, table string) (release func(context.Context) error, ok bool, err error) {
	l := NewTableLock(pool, table)

	acquired, err := l.TryAcquire(ctx)
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		_, err := l.Release(ctx)
		return err
	}
	return release, true, nil
}
