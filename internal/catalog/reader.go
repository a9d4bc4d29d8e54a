// Package catalog reads table and foreign-key metadata from Postgres's
// information_schema.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/pgarchive/internal/apperrors"
)

// Querier is satisfied by *pgxpool.Pool and by pgxmock's pool mock, letting
// tests exercise Reader without a live database.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ForeignKeyRow is one row of the catalog's parent/child foreign-key join,
// columns already aggregated in ordinal order per constraint.
type ForeignKeyRow struct {
	ParentTable     string
	ParentPKColumns string
	ChildTable      string
	ChildPKColumns  string
	ChildFKColumns  string
}

// Reader queries a single schema's base tables and foreign keys.
type Reader struct {
	pool Querier
}

// NewReader builds a Reader over pool.
func NewReader(pool Querier) *Reader {
	return &Reader{pool: pool}
}

const tablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type = 'BASE TABLE'
ORDER BY table_name`

// Tables returns every base table name in schema.
func (r *Reader) Tables(ctx context.Context, schema string) ([]string, error) {
	rows, err := r.pool.Query(ctx, tablesQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}

	return tables, nil
}

// foreignKeysQuery aggregates each constraint's columns in ordinal order
// via string_agg, grounded on build_references.py's get_all_fk CTE.
const foreignKeysQuery = `
WITH constraint_columns AS (
    SELECT table_name,
           constraint_catalog,
           constraint_schema,
           constraint_name,
           constraint_type,
           string_agg(column_name, ',' ORDER BY ordinal_position) AS column_name
    FROM (
        SELECT ccu_in.table_name,
               ccu_in.constraint_catalog,
               ccu_in.constraint_schema,
               ccu_in.constraint_name,
               tc_in.constraint_type,
               kcu.column_name,
               kcu.ordinal_position
        FROM information_schema.constraint_column_usage ccu_in
        JOIN information_schema.table_constraints tc_in
            ON ccu_in.constraint_name = tc_in.constraint_name
            AND ccu_in.constraint_schema = tc_in.constraint_schema
            AND ccu_in.constraint_catalog = tc_in.constraint_catalog
        JOIN information_schema.key_column_usage kcu
            ON ccu_in.constraint_name = kcu.constraint_name
            AND ccu_in.constraint_schema = kcu.constraint_schema
            AND ccu_in.constraint_catalog = kcu.constraint_catalog
        WHERE ccu_in.constraint_schema = $1
    ) sub
    GROUP BY table_name, constraint_catalog, constraint_schema, constraint_name, constraint_type
)
SELECT
    ccu.table_name AS parent_table,
    ccu.column_name AS parent_pk_columns,
    tc.table_name AS child_table,
    pk.column_name AS child_pk_columns,
    fk.column_name AS child_fk_columns
FROM information_schema.table_constraints tc
JOIN constraint_columns ccu
    ON tc.constraint_catalog = ccu.constraint_catalog
    AND tc.constraint_schema = ccu.constraint_schema
    AND tc.constraint_name = ccu.constraint_name
    AND lower(ccu.constraint_type) = 'primary key'
JOIN constraint_columns fk
    ON tc.constraint_catalog = fk.constraint_catalog
    AND tc.constraint_schema = fk.constraint_schema
    AND tc.constraint_name = fk.constraint_name
    AND lower(fk.constraint_type) = 'foreign key'
JOIN constraint_columns pk
    ON pk.table_name = tc.table_name
    AND lower(pk.constraint_type) = 'primary key'
WHERE lower(tc.constraint_type) = 'foreign key' AND tc.constraint_schema = $1
ORDER BY ccu.table_name, tc.table_name`

// ForeignKeys returns every foreign-key constraint in schema, parent and
// child columns aggregated per ordinal position for multi-column keys.
func (r *Reader) ForeignKeys(ctx context.Context, schema string) ([]ForeignKeyRow, error) {
	rows, err := r.pool.Query(ctx, foreignKeysQuery, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var fks []ForeignKeyRow
	for rows.Next() {
		var fk ForeignKeyRow
		if err := rows.Scan(&fk.ParentTable, &fk.ParentPKColumns, &fk.ChildTable, &fk.ChildPKColumns, &fk.ChildFKColumns); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
		}
		fks = append(fks, fk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}

	return fks, nil
}
