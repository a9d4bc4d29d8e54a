// Package reftext renders a table's foreign-key relationships as aligned
// plain text for the table-refs CLI command, in place of the dependency
// graph ASCII diagrams this package's teacher used to draw.
package reftext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/queryapi"
)

// Render formats table's in-refs (tables that reference it) and out-refs
// (tables it references) as a two-section plain-text block.
func Render(table string, refs queryapi.TableReferences) string {
	var b strings.Builder

	fmt.Fprintln(&b, color.New(color.FgCyan, color.Bold).Sprint(table))
	fmt.Fprintln(&b, "  in_refs (tables that reference "+table+"):")
	renderSection(&b, refs.InRefs, table, false)

	fmt.Fprintln(&b, "  out_refs (tables "+table+" references):")
	renderSection(&b, refs.OutRefs, table, true)

	return b.String()
}

func renderSection(b *strings.Builder, section map[string][]graph.ForeignKeyEdge, table string, outbound bool) {
	if len(section) == 0 {
		fmt.Fprintln(b, "    (none)")
		return
	}

	names := make([]string, 0, len(section))
	width := 0
	for name := range section {
		names = append(names, name)
		if w := runewidth.StringWidth(name); w > width {
			width = w
		}
	}
	sort.Strings(names)

	for _, name := range names {
		for _, edge := range section[name] {
			padded := name + strings.Repeat(" ", width-runewidth.StringWidth(name))
			fmt.Fprintf(b, "    %s  %s\n", padded, edgeArrow(table, name, edge, outbound))
		}
	}
}

// edgeArrow renders one foreign key as "child.fk -> parent.pk", oriented so
// the arrow always points from the referencing table to the referenced one
// regardless of which side of the relationship table sits on.
func edgeArrow(table, other string, edge graph.ForeignKeyEdge, outbound bool) string {
	arrow := color.Gray.Sprint("->")
	if outbound {
		return fmt.Sprintf("%s.%s %s %s.%s", table, edge.ChildFKColumns, arrow, other, edge.ParentPKColumns)
	}
	return fmt.Sprintf("%s.%s %s %s.%s", other, edge.ChildFKColumns, arrow, table, edge.ParentPKColumns)
}
