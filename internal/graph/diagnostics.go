package graph

// CycleMarker is the typed diagnostic value placed in a Diagnostics tree
// wherever DFS traversal would otherwise revisit a table, replacing the
// original implementation's localized string markers with values callers
// can switch on.
type CycleMarker interface {
	cycleMarker()
}

// SelfLoop marks a table that references itself directly.
type SelfLoop struct{}

func (SelfLoop) cycleMarker() {}

// Cycle marks a table reached a second time via a longer path, recording
// the path taken from the first visit.
type Cycle struct {
	Path []string
}

func (Cycle) cycleMarker() {}

// Diagnostics is a nested view of the dependency graph for display and
// debugging: each table maps to its children, recursively, with cycle
// sentinels in place of infinite recursion.
type Diagnostics map[string]DiagnosticNode

// DiagnosticNode is either a further nested Diagnostics map (Children) or
// a CycleMarker (Marker), never both.
type DiagnosticNode struct {
	Children Diagnostics
	Marker   CycleMarker
}

// BuildDiagnostics walks the graph from every table via DFS, in
// descendant-count order, producing a nested diagnostic tree. This never
// blocks on cycles (unlike TopologicalSort) — it reports them as sentinel
// values, matching recursive_build's debug-only recursion in the original
// implementation.
func (g *DependencyGraph) BuildDiagnostics() Diagnostics {
	root := make(Diagnostics, len(g.tables))
	for _, table := range g.Tables() {
		root[table] = g.buildNode(table, map[string]bool{table: true}, []string{table})
	}
	return root
}

func (g *DependencyGraph) buildNode(table string, visited map[string]bool, path []string) DiagnosticNode {
	children := make(Diagnostics, len(g.ChildrenOf(table)))
	for _, child := range g.SortedChildren(table) {
		if child == table {
			children[child] = DiagnosticNode{Marker: SelfLoop{}}
			continue
		}
		if visited[child] {
			children[child] = DiagnosticNode{Marker: Cycle{Path: append(append([]string{}, path...), child)}}
			continue
		}

		nextVisited := make(map[string]bool, len(visited)+1)
		for k := range visited {
			nextVisited[k] = true
		}
		nextVisited[child] = true

		children[child] = g.buildNode(child, nextVisited, append(path, child))
	}

	return DiagnosticNode{Children: children}
}
