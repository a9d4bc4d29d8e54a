// Package queryapi exposes the three operations PgArchive's callers use:
// archiving a table's rows (and everything that references them),
// listing a table's foreign-key relationships, and looking up where a
// specific set of rows is referenced from.
package queryapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dbsmedya/pgarchive/internal/apperrors"
	"github.com/dbsmedya/pgarchive/internal/archiver"
	"github.com/dbsmedya/pgarchive/internal/catalog"
	"github.com/dbsmedya/pgarchive/internal/config"
	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/logger"
	"github.com/dbsmedya/pgarchive/internal/sqlutil"
	"github.com/dbsmedya/pgarchive/internal/types"
	"github.com/dbsmedya/pgarchive/internal/verifier"
)

// TableReferences describes a table's relationships to the rest of the
// schema: InRefs are tables that reference it, OutRefs are tables it
// references.
type TableReferences struct {
	InRefs  map[string][]graph.ForeignKeyEdge
	OutRefs map[string][]graph.ForeignKeyEdge
}

// Pool is satisfied by *pgxpool.Pool and by pgxmock's pool mock. It extends
// catalog.Querier with QueryRow, which the post-archive verification pass
// needs to count mirror table rows.
type Pool interface {
	catalog.Querier
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// API composes the dependency graph, the archiver, and a raw query path
// into the three operations PgArchive exposes to its CLI.
type API struct {
	pool     Pool
	graph    *graph.DependencyGraph
	archiver *archiver.Archiver
	cfg      *config.ArchiverConfig
	schema   string
	log      *logger.Logger
}

// New builds an API over an already-constructed graph and archiver.
func New(pool Pool, g *graph.DependencyGraph, arch *archiver.Archiver, cfg *config.ArchiverConfig, schema string, log *logger.Logger) *API {
	if log == nil {
		log = logger.NewDefault()
	}
	return &API{pool: pool, graph: g, archiver: arch, cfg: cfg, schema: schema, log: log}
}

// ArchiveTable archives and deletes table's rows named by ids, and
// everything in the schema that transitively references them, chunk_size
// ids at a time. Once the archiver has finished, and unless it ran in debug
// mode or mirroring is disabled, it verifies that every mirror table the
// archiver wrote to received exactly as many rows as were deleted.
func (a *API) ArchiveTable(ctx context.Context, table string, ids []any) error {
	pk, ok := a.graph.PrimaryKey(table)
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrNoPrimaryKey, table)
	}

	rows := make(types.RowBatch, len(ids))
	for i, id := range ids {
		rows[i] = types.Row{pk: id}
	}

	for _, chunk := range types.Chunks(rows, a.cfg.ChunkSize) {
		if err := a.archiver.Archive(ctx, table, chunk, pk, 0); err != nil {
			return fmt.Errorf("archive table %s: %w", table, err)
		}
	}

	if a.cfg.IsDebug || !a.cfg.ToArchive {
		return nil
	}

	v := verifier.NewVerifier(a.pool, a.schema, a.log)
	if _, err := v.VerifyAll(ctx, a.archiver.Counts(), a.cfg.ArchiveSuffix); err != nil {
		return fmt.Errorf("verify archive of %s: %w", table, err)
	}

	return nil
}

// SchemaOrder returns every table in the schema in topological order
// (parents before children). It returns a *graph.CycleError if the
// dependency graph contains a cycle, since no linear order satisfies one.
func (a *API) SchemaOrder() ([]string, error) {
	return a.graph.TopologicalSort()
}

// GetTableReferences returns every table that references table (InRefs)
// and every table table itself references (OutRefs).
func (a *API) GetTableReferences(table string) (TableReferences, error) {
	if !a.graph.HasTable(table) {
		return TableReferences{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}

	inRefs := make(map[string][]graph.ForeignKeyEdge)
	for _, child := range a.graph.ChildrenOf(table) {
		inRefs[child] = a.graph.EdgesBetween(table, child)
	}

	outRefs := make(map[string][]graph.ForeignKeyEdge)
	for _, parent := range a.graph.ParentsOf(table) {
		outRefs[parent] = a.graph.EdgesBetween(parent, table)
	}

	return TableReferences{InRefs: inRefs, OutRefs: outRefs}, nil
}

// GetRowsReferences looks up, for every id in ids, which rows in which
// tables reference it: result[id][childTable][fkColumn] is the slice of
// referencing rows. The inner map is keyed by (childTable, fkColumn) and
// allocated once per id before any edge's query runs, so that a table
// reaching the parent through more than one foreign key never has one
// edge's results overwrite another's.
func (a *API) GetRowsReferences(ctx context.Context, table string, ids []any) (map[any]map[string]map[string][]types.Row, error) {
	if !a.graph.HasTable(table) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, table)
	}
	if len(ids) == 0 {
		return map[any]map[string]map[string][]types.Row{}, nil
	}

	result := make(map[any]map[string]map[string][]types.Row, len(ids))
	for _, id := range ids {
		result[id] = make(map[string]map[string][]types.Row)
	}

	for _, child := range a.graph.ChildrenOf(table) {
		edges := a.graph.EdgesBetween(table, child)

		for _, id := range ids {
			inner := make(map[string][]types.Row, len(edges))
			for _, edge := range edges {
				inner[edge.ChildFKColumns] = []types.Row{}
			}
			result[id][child] = inner
		}

		for _, edge := range edges {
			if err := a.fillEdgeReferences(ctx, result, child, edge, ids); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// fillEdgeReferences queries child for every row whose edge.ChildFKColumns
// value matches one of ids, and appends each row under its matching id.
// Composite foreign keys can't be matched back to a single scalar id, so
// they're skipped here (GetRowsReferences operates on single-column ids,
// matching the original's scalar id list).
func (a *API) fillEdgeReferences(ctx context.Context, result map[any]map[string]map[string][]types.Row, child string, edge graph.ForeignKeyEdge, ids []any) error {
	if strings.Contains(edge.ChildFKColumns, ",") {
		return nil
	}

	placeholders := make([]string, len(ids))
	for i := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(
		"SELECT %s, %s FROM %s WHERE %s IN (%s)",
		sqlutil.QuoteIdentifier(edge.ChildPKColumns),
		sqlutil.QuoteIdentifier(edge.ChildFKColumns),
		sqlutil.QuoteQualified(a.schema, child),
		sqlutil.QuoteIdentifier(edge.ChildFKColumns),
		strings.Join(placeholders, ","),
	)

	rows, err := a.pool.Query(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var pkVal, fkVal any
		if err := rows.Scan(&pkVal, &fkVal); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrCatalogUnavailable, err)
		}

		bucket, ok := result[fkVal]
		if !ok {
			continue
		}
		row := types.Row{edge.ChildPKColumns: pkVal, edge.ChildFKColumns: fkVal}
		bucket[child][edge.ChildFKColumns] = append(bucket[child][edge.ChildFKColumns], row)
	}

	return rows.Err()
}
