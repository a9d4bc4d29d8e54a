package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/pgarchive/internal/archiver"
	"github.com/dbsmedya/pgarchive/internal/catalog"
	"github.com/dbsmedya/pgarchive/internal/config"
	"github.com/dbsmedya/pgarchive/internal/database"
	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/logger"
	"github.com/dbsmedya/pgarchive/internal/queryapi"
)

// app bundles everything a subcommand needs: the loaded config, a
// connected pool, the discovered dependency graph, and the archiver/query
// layer built on top of it.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *database.Manager

	reader *catalog.Reader
	graph  *graph.DependencyGraph
	arch   *archiver.Archiver
	api    *queryapi.API
}

// buildApp loads configuration, connects to Postgres, and discovers the
// dependency graph, returning everything a command needs to run. dryRun
// forces debug mode regardless of the config file's is_debug setting, since
// the archiver decides whether to record a Planner at construction time.
// Callers must call Close when done.
func buildApp(ctx context.Context, configFile, logLevelOverride string, dryRun bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dryRun {
		cfg.Archiver.IsDebug = true
	}

	effectiveLevel := "info"
	if logLevelOverride != "" {
		effectiveLevel = logLevelOverride
	}
	log, err := logger.New(effectiveLevel, "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db := database.NewManager(&cfg.DB)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	reader := catalog.NewReader(db.Pool)
	builder := graph.NewBuilder(reader, cfg.DB.Schema)
	g, err := builder.Build(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}

	if g.HasCycle() {
		log.Warn("dependency graph contains a cycle; archival will still run, descending via busiest-subtree-first order until max_depth is reached")
	}

	arch := archiver.New(db.Pool, g, &cfg.Archiver, cfg.DB.Schema, log)
	api := queryapi.New(db.Pool, g, arch, &cfg.Archiver, cfg.DB.Schema, log)

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		reader: reader,
		graph:  g,
		arch:   arch,
		api:    api,
	}, nil
}

// Close releases the database pool.
func (a *app) Close() {
	a.db.Close()
}
