// Package verifier checks that an archival run moved exactly the rows it
// claims to have moved.
package verifier

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/pgarchive/internal/logger"
	"github.com/dbsmedya/pgarchive/internal/sqlutil"
)

// Pool is satisfied by *pgxpool.Pool and by pgxmock's pool mock, letting
// tests exercise Verifier without a live database.
type Pool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VerifyResult holds the outcome of comparing one table's archived row
// count against its mirror table's row count.
type VerifyResult struct {
	Table        string
	MirrorTable  string
	ExpectedRows int64
	MirrorRows   int64
	Match        bool
	ErrorMessage string
}

// VerifyStats aggregates VerifyResult across every table archived in a run.
type VerifyStats struct {
	TablesVerified int
	TablesPassed   int
	TablesFailed   int
	TotalRows      int64
}

// Verifier compares rows the archiver deleted against rows that landed in
// each mirror table. Unlike the source/destination hash compare this is
// descended from, there is one database here: the archiver already knows
// exactly how many rows it deleted from each table (the RETURNING count),
// so verification only needs to confirm the mirror table received the same
// number.
type Verifier struct {
	pool   Pool
	schema string
	log    *logger.Logger
}

// NewVerifier creates a Verifier over pool, scoped to schema.
func NewVerifier(pool Pool, schema string, log *logger.Logger) *Verifier {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Verifier{pool: pool, schema: schema, log: log}
}

// VerifyCounts compares expected (the number of rows the archiver deleted
// from table) against mirrorTable's actual row count.
func (v *Verifier) VerifyCounts(ctx context.Context, table, mirrorTable string, expected int64) (VerifyResult, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqlutil.QuoteQualified(v.schema, mirrorTable))

	var mirrorCount int64
	if err := v.pool.QueryRow(ctx, query).Scan(&mirrorCount); err != nil {
		return VerifyResult{}, fmt.Errorf("count mirror table %s: %w", mirrorTable, err)
	}

	result := VerifyResult{
		Table:        table,
		MirrorTable:  mirrorTable,
		ExpectedRows: expected,
		MirrorRows:   mirrorCount,
		Match:        expected == mirrorCount,
	}
	if !result.Match {
		result.ErrorMessage = fmt.Sprintf("row count mismatch: archiver deleted %d rows from %s, mirror %s has %d",
			expected, table, mirrorTable, mirrorCount)
	}

	return result, nil
}

// VerifyAll runs VerifyCounts for every table in expected (table name ->
// rows the archiver deleted from it), deriving each mirror table name from
// archiveSuffix, and aggregates the results. Tables with zero expected rows
// are skipped without querying their mirror table.
func (v *Verifier) VerifyAll(ctx context.Context, expected map[string]int64, archiveSuffix string) (*VerifyStats, error) {
	stats := &VerifyStats{}

	for table, count := range expected {
		if count == 0 {
			continue
		}

		mirrorTable := fmt.Sprintf("%s_%s", table, archiveSuffix)
		result, err := v.VerifyCounts(ctx, table, mirrorTable, count)
		if err != nil {
			return stats, fmt.Errorf("verify %s: %w", table, err)
		}

		stats.TablesVerified++
		stats.TotalRows += result.ExpectedRows

		if result.Match {
			stats.TablesPassed++
			v.log.Debugf("verification passed for table %q (%d rows)", table, result.ExpectedRows)
		} else {
			stats.TablesFailed++
			v.log.Errorf("verification failed for table %q: %s", table, result.ErrorMessage)
		}
	}

	if stats.TablesFailed > 0 {
		return stats, fmt.Errorf("verification failed: %d tables had mismatches", stats.TablesFailed)
	}

	return stats, nil
}
