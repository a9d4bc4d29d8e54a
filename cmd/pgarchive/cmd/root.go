// Package cmd implements the pgarchive CLI: archive a table's rows (and
// everything that references them), and inspect a schema's foreign-key
// relationships.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pgarchive/internal/database"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "pgarchive",
	Short: "Postgres relational-dependency archiver",
	Long: `pgarchive deletes a table's rows, and every row in the schema that
transitively references them, mirroring each deleted row into an archive
table before it leaves the source schema.

Features:
  - Dependency resolution straight off information_schema, no declared job config
  - Recursive descendant-then-self deletion in busiest-subtree-first order
  - Transactional delete-and-mirror per table, chunked by row count
  - Debug mode: trace the recursion without touching the database`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pgarchive.ini",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
}

// GetConfigFile returns the config file path.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevelOverride returns the --log-level override, empty if unset.
func GetLogLevelOverride() string {
	return logLevel
}

// appContext returns a context canceled on SIGINT or SIGTERM, so a
// subcommand blocked on a long archive run gets a chance to roll back its
// in-flight transaction instead of being killed outright.
func appContext() context.Context {
	return database.SetupSignalHandler()
}
