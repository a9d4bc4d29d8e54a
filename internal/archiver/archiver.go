// Package archiver implements the recursive descendant-then-self deletion
// that walks a dependency graph outward from a set of rows, mirroring each
// deleted row into an archive table before it leaves the source schema.
package archiver

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/pgarchive/internal/config"
	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/logger"
	"github.com/dbsmedya/pgarchive/internal/sqlutil"
	"github.com/dbsmedya/pgarchive/internal/types"
)

// Pool is satisfied by *pgxpool.Pool and by pgxmock's pool mock, letting
// tests exercise Archiver without a live database.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Archiver recursively archives and deletes rows, descendants first, using
// the dependency graph to find each table's children and their foreign
// keys back to the table being processed.
type Archiver struct {
	pool    Pool
	graph   *graph.DependencyGraph
	cfg     *config.ArchiverConfig
	schema  string
	log     *logger.Logger
	planner *Planner
	counts  map[string]int64
}

// New creates an Archiver. When cfg.IsDebug is true, Archive performs no
// writes and instead records a PlannedStep per level on a fresh Planner,
// retrievable via Plan() after the call returns.
func New(pool Pool, g *graph.DependencyGraph, cfg *config.ArchiverConfig, schema string, log *logger.Logger) *Archiver {
	var planner *Planner
	if cfg.IsDebug {
		planner = NewPlanner()
	}
	return &Archiver{pool: pool, graph: g, cfg: cfg, schema: schema, log: log, planner: planner, counts: make(map[string]int64)}
}

// Plan returns the steps recorded by every debug-mode Archive call since
// New, or nil if the archiver isn't in debug mode. The plan is never reset.
func (a *Archiver) Plan() *Planner {
	return a.planner
}

// Counts returns, per table, how many rows every Archive call since New
// has deleted (and mirrored, when ToArchive is set); the totals are never
// reset. Callers use this to check each mirror table
// received exactly the rows the archiver claims to have moved.
func (a *Archiver) Counts() map[string]int64 {
	return a.counts
}

// Archive deletes rows from table and every table that transitively
// references them, mirroring each row into its archive table first unless
// cfg.ToArchive is false. depth is threaded explicitly rather than held as
// mutable state, so a single Archiver is safe to reuse across root calls.
func (a *Archiver) Archive(ctx context.Context, table string, rows types.RowBatch, pkColumns string, depth int) error {
	log := a.log.WithTable(table).WithDepth(depth)

	if depth >= a.cfg.MaxDepth {
		log.Warnw("depth exceeded, stopping recursion", "event", "DepthExceeded")
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	log.Infow("start archive_recursive", "rows", len(rows))

	for _, child := range a.graph.SortedChildren(table) {
		for _, edge := range a.graph.EdgesBetween(table, child) {
			if err := a.archiveChildEdge(ctx, table, child, edge, rows, depth); err != nil {
				return err
			}
		}
	}

	return a.archiveByIDs(ctx, table, pkColumns, rows, depth)
}

// archiveChildEdge processes one foreign-key edge from child back to
// table, choosing between a direct archive_by_fk and a chunked recursive
// descent depending on whether child itself has descendants.
func (a *Archiver) archiveChildEdge(ctx context.Context, table, child string, edge graph.ForeignKeyEdge, rows types.RowBatch, depth int) error {
	if a.cfg.IsDebug {
		childPK := edge.ChildPKColumns
		if childPK == "" {
			childPK = edge.ChildFKColumns
		}
		a.planner.Record(PlannedStep{Table: child, ParentTable: table, FKColumn: edge.ChildFKColumns, Depth: depth + 1, RowCount: len(rows)})
		return a.Archive(ctx, child, rows, childPK, depth+1)
	}

	if len(a.graph.SortedChildren(child)) == 0 {
		_, err := a.archiveByFK(ctx, child, edge, rows, depth)
		return err
	}

	return a.recurseByFK(ctx, child, edge, rows, depth)
}

// recurseByFK selects child's primary key columns for every row that
// references one of table's rows via edge, then recurses on each
// chunk-sized slice of the result.
func (a *Archiver) recurseByFK(ctx context.Context, child string, edge graph.ForeignKeyEdge, parentRows types.RowBatch, depth int) error {
	parentPKs, err := pkTuples(parentRows, edge.ParentPKColumns)
	if err != nil {
		return fmt.Errorf("select %s by fk: %w", child, err)
	}
	if len(parentPKs) == 0 {
		return nil
	}

	selectCols := splitColumns(edge.ChildPKColumns)
	whereCols := splitColumns(edge.ChildFKColumns)

	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE (%s) IN (%s)",
		quoteColumnList(selectCols),
		sqlutil.QuoteQualified(a.schema, child),
		quoteColumnList(whereCols),
		tupleList(len(whereCols), len(parentPKs)),
	)

	rows, err := a.pool.Query(ctx, query, flattenTuples(parentPKs)...)
	if err != nil {
		return fmt.Errorf("select %s by fk: %w", child, err)
	}
	defer rows.Close()

	var chunk types.RowBatch
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return fmt.Errorf("select %s by fk: %w", child, err)
		}
		chunk = append(chunk, row)

		if len(chunk) >= a.cfg.ChunkSize {
			if err := a.Archive(ctx, child, chunk, edge.ChildPKColumns, depth+1); err != nil {
				return err
			}
			chunk = nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("select %s by fk: %w", child, err)
	}

	return a.Archive(ctx, child, chunk, edge.ChildPKColumns, depth+1)
}

// archiveByFK deletes every row of table that references one of
// parentRows via edge, mirroring deleted rows first. Returns the number
// of rows archived.
func (a *Archiver) archiveByFK(ctx context.Context, table string, edge graph.ForeignKeyEdge, parentRows types.RowBatch, depth int) (int, error) {
	log := a.log.WithTable(table).WithDepth(depth + 1)
	log.Infow("archive_by_fk", "rows", len(parentRows), "fk", edge.ChildFKColumns)

	parentPKs, err := pkTuples(parentRows, edge.ParentPKColumns)
	if err != nil {
		return 0, fmt.Errorf("archive %s by fk: %w", table, err)
	}
	if len(parentPKs) == 0 {
		return 0, nil
	}

	whereCols := splitColumns(edge.ChildFKColumns)
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE (%s) IN (%s) RETURNING *",
		sqlutil.QuoteQualified(a.schema, table),
		quoteColumnList(whereCols),
		tupleList(len(whereCols), len(parentPKs)),
	)

	return a.deleteAndMirror(ctx, table, query, flattenTuples(parentPKs))
}

// archiveByIDs deletes every row of table named in rows' pkColumns,
// mirroring deleted rows first.
func (a *Archiver) archiveByIDs(ctx context.Context, table, pkColumns string, rows types.RowBatch, depth int) error {
	log := a.log.WithTable(table).WithDepth(depth)
	log.Infow("archive_by_ids", "rows", len(rows), "pk", pkColumns)

	if a.cfg.IsDebug {
		a.planner.Record(PlannedStep{Table: table, Depth: depth, RowCount: len(rows), Self: true})
		return nil
	}

	pks, err := pkTuples(rows, pkColumns)
	if err != nil {
		return fmt.Errorf("archive %s by ids: %w", table, err)
	}
	if len(pks) == 0 {
		return nil
	}

	pkCols := splitColumns(pkColumns)
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE (%s) IN (%s) RETURNING *",
		sqlutil.QuoteQualified(a.schema, table),
		quoteColumnList(pkCols),
		tupleList(len(pkCols), len(pks)),
	)

	_, err = a.deleteAndMirror(ctx, table, query, flattenTuples(pks))
	return err
}

// deleteAndMirror runs query in its own transaction, streaming RETURNING
// rows into chunk_size-sized mirror inserts as they arrive.
func (a *Archiver) deleteAndMirror(ctx context.Context, table, query string, args []any) (int, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete tx for %s: %w", table, err)
	}
	defer tx.Rollback(ctx)

	var mirrorTable string
	if a.cfg.ToArchive {
		mirrorTable, err = a.ensureMirror(ctx, tx, table)
		if err != nil {
			return 0, err
		}
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}

	total := 0
	var chunk types.RowBatch
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			rows.Close()
			return total, fmt.Errorf("delete from %s: %w", table, err)
		}
		chunk = append(chunk, row)
		total++

		if a.cfg.ToArchive && len(chunk) >= a.cfg.ChunkSize {
			if err := a.insertRows(ctx, tx, mirrorTable, chunk); err != nil {
				rows.Close()
				return total, err
			}
			chunk = nil
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return total, fmt.Errorf("delete from %s: %w", table, err)
	}
	rows.Close()

	if a.cfg.ToArchive && len(chunk) > 0 {
		if err := a.insertRows(ctx, tx, mirrorTable, chunk); err != nil {
			return total, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return total, fmt.Errorf("commit delete tx for %s: %w", table, err)
	}

	a.counts[table] += int64(total)

	return total, nil
}

// pkTuples extracts, in row order, the tuple of values named by the
// comma-joined columns string from each row.
func pkTuples(rows types.RowBatch, columns string) ([][]any, error) {
	cols := splitColumns(columns)
	tuples := make([][]any, 0, len(rows))
	for _, row := range rows {
		tuple := make([]any, len(cols))
		for i, col := range cols {
			v, ok := row[col]
			if !ok {
				return nil, fmt.Errorf("row missing column %q", col)
			}
			tuple[i] = v
		}
		tuples = append(tuples, tuple)
	}
	return tuples, nil
}

func splitColumns(columns string) []string {
	parts := strings.Split(columns, ",")
	cols := make([]string, len(parts))
	for i, p := range parts {
		cols[i] = strings.TrimSpace(p)
	}
	return cols
}

func quoteColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = sqlutil.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// tupleList builds the "($1,$2),($3,$4)" placeholder list for a
// row-tuple IN clause over width columns and count tuples.
func tupleList(width, count int) string {
	tuples := make([]string, count)
	n := 1
	for i := 0; i < count; i++ {
		placeholders := make([]string, width)
		for j := 0; j < width; j++ {
			placeholders[j] = fmt.Sprintf("$%d", n)
			n++
		}
		tuples[i] = "(" + strings.Join(placeholders, ",") + ")"
	}
	return strings.Join(tuples, ",")
}

func flattenTuples(tuples [][]any) []any {
	args := make([]any, 0, len(tuples)*len(tuples[0]))
	for _, t := range tuples {
		args = append(args, t...)
	}
	return args
}
