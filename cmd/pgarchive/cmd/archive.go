package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pgarchive/internal/lock"
)

var (
	archiveTable  string
	archiveIDs    string
	archiveDryRun bool
	archiveForce  bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive-table",
	Short: "Archive a table's rows, and everything that references them",
	Long: `archive-table deletes the named rows from table, and every row in the
schema that transitively references them, mirroring each deleted row into
an archive table first.

Descendant tables are drained before the table itself, busiest subtree
first. Use --dry-run to trace the recursion without writing anything.

Example:
  pgarchive archive-table --table orders --ids 101,102,103`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVar(&archiveTable, "table", "", "Table to archive (required)")
	archiveCmd.Flags().StringVar(&archiveIDs, "ids", "", "Comma-separated primary key values to archive (required)")
	archiveCmd.MarkFlagRequired("table")
	archiveCmd.MarkFlagRequired("ids")

	archiveCmd.Flags().BoolVar(&archiveDryRun, "dry-run", false,
		"Trace the recursion without deleting or mirroring any rows")
	archiveCmd.Flags().BoolVar(&archiveForce, "force", false,
		"Skip the advisory lock check (use with caution if another archival may be running)")

	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	table := archiveTable
	ids := parseIDs(archiveIDs)

	ctx := appContext()
	application, err := buildApp(ctx, GetConfigFile(), GetLogLevelOverride(), archiveDryRun)
	if err != nil {
		return err
	}
	defer application.Close()

	if !archiveForce {
		release, ok, err := lock.TryAcquire(ctx, application.db.Pool, table)
		if err != nil {
			return fmt.Errorf("failed to acquire advisory lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("table %q may already be archiving in another session (use --force to override)", table)
		}
		defer release(context.Background())
		application.log.Infow("acquired advisory lock", "table", table)
	} else {
		application.log.Warnw("skipping advisory lock acquisition (--force)", "table", table)
	}

	if err := application.api.ArchiveTable(ctx, table, ids); err != nil {
		return fmt.Errorf("archive table %s: %w", table, err)
	}

	if archiveDryRun {
		cmd.Println(application.arch.Plan().Render())
		return nil
	}

	cmd.Printf("archived %d row(s) from %s and its dependents\n", application.arch.Counts()[table], table)
	return nil
}
