package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var (
	rowsRefsTable string
	rowsRefsIDs   string
)

var rowsRefsCmd = &cobra.Command{
	Use:   "rows-refs",
	Short: "List which rows reference the given rows",
	Long: `rows-refs looks up, for each id, which rows in which child tables
reference it, grouped by child table and foreign-key column.

Example:
  pgarchive rows-refs --table orders --ids 101,102`,
	RunE: runRowsRefs,
}

func init() {
	rowsRefsCmd.Flags().StringVar(&rowsRefsTable, "table", "", "Table the ids belong to (required)")
	rowsRefsCmd.Flags().StringVar(&rowsRefsIDs, "ids", "", "Comma-separated primary key values to look up (required)")
	rowsRefsCmd.MarkFlagRequired("table")
	rowsRefsCmd.MarkFlagRequired("ids")

	rootCmd.AddCommand(rowsRefsCmd)
}

func runRowsRefs(cmd *cobra.Command, args []string) error {
	table := rowsRefsTable
	ids := parseIDs(rowsRefsIDs)

	ctx := appContext()
	application, err := buildApp(ctx, GetConfigFile(), GetLogLevelOverride(), false)
	if err != nil {
		return err
	}
	defer application.Close()

	refs, err := application.api.GetRowsReferences(ctx, table, ids)
	if err != nil {
		return fmt.Errorf("rows references for %s: %w", table, err)
	}

	for _, id := range ids {
		cmd.Printf("%v:\n", id)
		byChild := refs[id]

		children := make([]string, 0, len(byChild))
		for child := range byChild {
			children = append(children, child)
		}
		sort.Strings(children)

		for _, child := range children {
			for fkColumn, rows := range byChild[child] {
				cmd.Printf("  %s.%s: %d row(s)\n", child, fkColumn, len(rows))
			}
		}
	}

	return nil
}
