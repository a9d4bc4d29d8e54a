package graph

import (
	"context"
	"fmt"

	"github.com/dbsmedya/pgarchive/internal/catalog"
)

// Builder constructs a DependencyGraph by reading live catalog metadata,
// replacing the original teacher's job-declared relation tree with
// discovery straight off information_schema.
type Builder struct {
	reader *catalog.Reader
	schema string
}

// NewBuilder creates a graph builder over reader for the given schema.
func NewBuilder(reader *catalog.Reader, schema string) *Builder {
	return &Builder{reader: reader, schema: schema}
}

// Build reads every base table and foreign key in the schema and folds
// them into a DependencyGraph.
func (b *Builder) Build(ctx context.Context) (*DependencyGraph, error) {
	tables, err := b.reader.Tables(ctx, b.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	fks, err := b.reader.ForeignKeys(ctx, b.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}

	g := NewDependencyGraph()
	for _, table := range tables {
		g.AddTable(table)
	}

	for _, fk := range fks {
		g.AddEdge(fk.ParentTable, fk.ChildTable, ForeignKeyEdge{
			ParentPKColumns: fk.ParentPKColumns,
			ChildPKColumns:  fk.ChildPKColumns,
			ChildFKColumns:  fk.ChildFKColumns,
		})
		if fk.ChildPKColumns != "" {
			g.SetPrimaryKey(fk.ChildTable, fk.ChildPKColumns)
		}
	}

	return g, nil
}
