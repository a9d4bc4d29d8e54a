// Package apperrors defines the sentinel error taxonomy shared across
// PgArchive's packages: config, catalog, graph, and queryapi each wrap one
// of these with fmt.Errorf("...: %w", ...) rather than returning bare
// driver or parsing errors.
package apperrors

import "errors"

var (
	// ErrConfigInvalid is returned when a config file fails validation
	// (missing required field, non-numeric chunk_size/max_depth, etc).
	ErrConfigInvalid = errors.New("config invalid")

	// ErrCatalogUnavailable is returned when the information_schema
	// catalog cannot be read (connection failure, permission denial).
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrUnknownTable is returned when an operation names a table absent
	// from the discovered dependency graph.
	ErrUnknownTable = errors.New("unknown table")

	// ErrNoPrimaryKey is returned when a table has no single-constraint
	// primary key recorded in the catalog.
	ErrNoPrimaryKey = errors.New("no primary key")
)
