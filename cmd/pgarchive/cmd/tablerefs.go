package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/reftext"
)

var tableRefsTable string

var tableRefsCmd = &cobra.Command{
	Use:   "table-refs",
	Short: "List a table's foreign-key relationships",
	Long: `table-refs prints every table that references the named table (in_refs)
and every table it references (out_refs), as discovered from
information_schema.

Example:
  pgarchive table-refs --table orders`,
	RunE: runTableRefs,
}

func init() {
	tableRefsCmd.Flags().StringVar(&tableRefsTable, "table", "", "Table to inspect (required)")
	tableRefsCmd.MarkFlagRequired("table")

	rootCmd.AddCommand(tableRefsCmd)
}

func runTableRefs(cmd *cobra.Command, args []string) error {
	table := tableRefsTable

	ctx := appContext()
	application, err := buildApp(ctx, GetConfigFile(), GetLogLevelOverride(), false)
	if err != nil {
		return err
	}
	defer application.Close()

	refs, err := application.api.GetTableReferences(table)
	if err != nil {
		return fmt.Errorf("table references for %s: %w", table, err)
	}

	cmd.Print(reftext.Render(table, refs))

	order, err := application.api.SchemaOrder()
	if err != nil {
		var cycleErr *graph.CycleError
		if errors.As(err, &cycleErr) {
			cmd.Println("\nschema order: unavailable, the dependency graph has a cycle")
			cmd.Println(cycleErr.Error())
			return nil
		}
		return fmt.Errorf("schema order: %w", err)
	}

	cmd.Printf("\nschema order (parents first): %s\n", strings.Join(order, " -> "))
	return nil
}
