package archiver

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/pgarchive/internal/sqlutil"
	"github.com/dbsmedya/pgarchive/internal/types"
)

// ensureMirror creates table's archive mirror if it doesn't already exist,
// copying structure only via LIKE, and returns the mirror's bare name.
func (a *Archiver) ensureMirror(ctx context.Context, tx pgx.Tx, table string) (string, error) {
	mirror := table + "_" + a.cfg.ArchiveSuffix

	query := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (LIKE %s)",
		sqlutil.QuoteQualified(a.schema, mirror),
		sqlutil.QuoteQualified(a.schema, table),
	)
	if _, err := tx.Exec(ctx, query); err != nil {
		return "", fmt.Errorf("create mirror table %s: %w", mirror, err)
	}

	return mirror, nil
}

// insertRows writes rows into mirror as a single multi-valued INSERT,
// JSON-wrapping any map/slice column values first so they fit a jsonb
// column in the mirror table.
func (a *Archiver) insertRows(ctx context.Context, tx pgx.Tx, mirror string, rows types.RowBatch) error {
	if len(rows) == 0 {
		return nil
	}

	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}

	valueRows := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		wrapped, err := types.JSONWrapRow(row)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", mirror, err)
		}

		placeholders := make([]string, len(columns))
		for j, col := range columns {
			placeholders[j] = fmt.Sprintf("$%d", n)
			n++
			args = append(args, wrapped[col])
		}
		valueRows[i] = "(" + strings.Join(placeholders, ",") + ")"
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		sqlutil.QuoteQualified(a.schema, mirror),
		quoteColumnList(columns),
		strings.Join(valueRows, ","),
	)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", mirror, err)
	}

	return nil
}

// rowScanner is satisfied by pgx.Rows, narrowed for scanRow's use.
type rowScanner interface {
	FieldDescriptions() []pgx.FieldDescription
	Values() (row []any, err error)
}

// scanRow reads the current row into a types.Row keyed by column name.
func scanRow(rows rowScanner) (types.Row, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	fields := rows.FieldDescriptions()
	row := make(types.Row, len(fields))
	for i, f := range fields {
		row[string(f.Name)] = values[i]
	}
	return row, nil
}
