package lock

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestTryAcquire_Succeeds(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(`SELECT pg_try_advisory_lock\(hashtext\(\$1\)\)`).
		WithArgs("pgarchive:archive:orders").
		WillReturnRows(pgxmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))

	release, ok, err := TryAcquire(context.Background(), pool, "orders")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, release)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestTryAcquire_AlreadyHeldReturnsFalse(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(`SELECT pg_try_advisory_lock\(hashtext\(\$1\)\)`).
		WithArgs("pgarchive:archive:orders").
		WillReturnRows(pgxmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	release, ok, err := TryAcquire(context.Background(), pool, "orders")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, release)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestTryAcquire_ReleaseReleasesLock(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(`SELECT pg_try_advisory_lock\(hashtext\(\$1\)\)`).
		WithArgs("pgarchive:archive:orders").
		WillReturnRows(pgxmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	pool.ExpectQuery(`SELECT pg_advisory_unlock\(hashtext\(\$1\)\)`).
		WithArgs("pgarchive:archive:orders").
		WillReturnRows(pgxmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))

	release, ok, err := TryAcquire(context.Background(), pool, "orders")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, release(context.Background()))
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestAdvisoryLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	l := NewTableLock(pool, "orders")
	released, err := l.Release(context.Background())
	require.NoError(t, err)
	require.False(t, released)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestAdvisoryLock_TryAcquireTwiceIsIdempotent(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery(`SELECT pg_try_advisory_lock\(hashtext\(\$1\)\)`).
		WithArgs("pgarchive:archive:orders").
		WillReturnRows(pgxmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))

	l := NewTableLock(pool, "orders")
	ok, err := l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, l.IsHeld())
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestGenerateJobLockName(t *testing.T) {
	require.Equal(t, "pgarchive:archive:orders", GenerateJobLockName("orders"))
}
