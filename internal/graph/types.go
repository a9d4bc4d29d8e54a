// Package graph builds and queries the table dependency graph PgArchive
// discovers from a live Postgres catalog.
package graph

import "github.com/elliotchance/orderedmap/v2"

// ForeignKeyEdge describes one foreign-key constraint from a child table
// back to a parent table, columns kept in ordinal order for compound keys.
type ForeignKeyEdge struct {
	ParentPKColumns string // comma-joined parent PK column names
	ChildPKColumns  string // comma-joined child PK column names
	ChildFKColumns  string // comma-joined child FK column names (references ParentPKColumns)
}

// ChildEdge collects every foreign key a child table declares toward the
// same parent (a table can reference another more than once).
type ChildEdge struct {
	Edges []ForeignKeyEdge
}

// childMap preserves the order children were discovered in, so that
// ChildrenOf mirrors archive_recursive's dict-iteration order over
// references[table_name] instead of Go's randomized map order.
type childMap = orderedmap.OrderedMap[string, *ChildEdge]

// DependencyGraph is the discovered parent -> child reference structure
// for a schema, plus each table's primary key.
type DependencyGraph struct {
	Children    map[string]*childMap // parent -> ordered child -> edge
	Parents     map[string][]string  // child -> parent names (reverse index)
	tables      map[string]bool      // every base table, including leaves with no FKs
	primaryKeys map[string]string    // table -> comma-joined PK columns
}

// NewDependencyGraph returns an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		Children:    make(map[string]*childMap),
		Parents:     make(map[string][]string),
		tables:      make(map[string]bool),
		primaryKeys: make(map[string]string),
	}
}

// AddTable registers table as a node, even if it has no FK relationships.
func (g *DependencyGraph) AddTable(table string) {
	g.tables[table] = true
	if _, ok := g.Children[table]; !ok {
		g.Children[table] = orderedmap.NewOrderedMap[string, *ChildEdge]()
	}
}

// AddEdge records a foreign key from child back to parent.
func (g *DependencyGraph) AddEdge(parent, child string, edge ForeignKeyEdge) {
	g.AddTable(parent)
	g.AddTable(child)

	ce, ok := g.Children[parent].Get(child)
	if !ok {
		ce = &ChildEdge{}
		g.Children[parent].Set(child, ce)
		g.Parents[child] = append(g.Parents[child], parent)
	}
	ce.Edges = append(ce.Edges, edge)

	g.primaryKeys[parent] = edge.ParentPKColumns
}

// SetPrimaryKey records table's primary key columns explicitly (used for
// tables that are only ever a child, or have no outgoing FK of their own).
func (g *DependencyGraph) SetPrimaryKey(table, pkColumns string) {
	g.primaryKeys[table] = pkColumns
}

// PrimaryKey returns table's comma-joined PK columns and whether one is known.
func (g *DependencyGraph) PrimaryKey(table string) (string, bool) {
	pk, ok := g.primaryKeys[table]
	return pk, ok
}

// HasTable reports whether table was discovered in the schema.
func (g *DependencyGraph) HasTable(table string) bool {
	return g.tables[table]
}

// Tables returns every discovered table name.
func (g *DependencyGraph) Tables() []string {
	tables := make([]string, 0, len(g.tables))
	for t := range g.tables {
		tables = append(tables, t)
	}
	return tables
}

// ChildrenOf returns the children table names of parent, in discovery order.
func (g *DependencyGraph) ChildrenOf(parent string) []string {
	cm, ok := g.Children[parent]
	if !ok {
		return nil
	}
	return cm.Keys()
}

// EdgesBetween returns every foreign key from child to parent (nil if none).
func (g *DependencyGraph) EdgesBetween(parent, child string) []ForeignKeyEdge {
	cm, ok := g.Children[parent]
	if !ok {
		return nil
	}
	ce, ok := cm.Get(child)
	if !ok {
		return nil
	}
	return ce.Edges
}

// ParentsOf returns the parent table names referenced by table's own
// foreign keys (table is the child in each relationship).
func (g *DependencyGraph) ParentsOf(table string) []string {
	return g.Parents[table]
}

// SortedChildren returns parent's children ordered by descendant-count
// descending. The archiver walks children in this order so that the
// busiest subtrees start draining first.
func (g *DependencyGraph) SortedChildren(parent string) []string {
	children := g.ChildrenOf(parent)
	counts := make(map[string]int, len(children))
	for _, c := range children {
		counts[c] = g.descendantCount(c, make(map[string]bool))
	}

	sorted := make([]string, len(children))
	copy(sorted, children)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && counts[sorted[j-1]] < counts[sorted[j]]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

func (g *DependencyGraph) descendantCount(table string, visiting map[string]bool) int {
	if visiting[table] {
		return 0
	}
	visiting[table] = true

	children := g.ChildrenOf(table)
	count := len(children)
	for _, c := range children {
		count += g.descendantCount(c, visiting)
	}
	return count
}
