package archiver

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/pgarchive/internal/config"
	"github.com/dbsmedya/pgarchive/internal/graph"
	"github.com/dbsmedya/pgarchive/internal/logger"
	"github.com/dbsmedya/pgarchive/internal/types"
)

func testArchiverConfig() *config.ArchiverConfig {
	return &config.ArchiverConfig{
		IsDebug:       false,
		ChunkSize:     10,
		MaxDepth:      20,
		ToArchive:     true,
		ArchiveSuffix: "archive",
	}
}

func TestArchive_LeafTableNoChildren(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	g := graph.NewDependencyGraph()
	g.AddTable("orders")
	g.SetPrimaryKey("orders", "id")

	pool.ExpectBegin()
	pool.ExpectExec(`CREATE TABLE IF NOT EXISTS "public"."orders_archive" \(LIKE "public"."orders"\)`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	pool.ExpectQuery(`DELETE FROM "public"."orders" WHERE \("id"\) IN \(\(\$1\)\) RETURNING \*`).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(1, "widget"))
	pool.ExpectExec(`INSERT INTO "public"."orders_archive"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectCommit()

	log := logger.NewDefault()
	a := New(pool, g, testArchiverConfig(), "public", log)

	rows := types.RowBatch{{"id": 1, "name": "widget"}}
	err = a.Archive(context.Background(), "orders", rows, "id", 0)
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestArchive_EmptyRowsIsNoop(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	g := graph.NewDependencyGraph()
	g.AddTable("orders")

	a := New(pool, g, testArchiverConfig(), "public", logger.NewDefault())
	err = a.Archive(context.Background(), "orders", types.RowBatch{}, "id", 0)
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestArchive_DepthExceededIsNoop(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	g := graph.NewDependencyGraph()
	g.AddTable("orders")

	cfg := testArchiverConfig()
	cfg.MaxDepth = 1
	a := New(pool, g, cfg, "public", logger.NewDefault())

	rows := types.RowBatch{{"id": 1}}
	err = a.Archive(context.Background(), "orders", rows, "id", 1)
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestArchive_DebugModeRecordsPlanWithoutQuerying(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	g := graph.NewDependencyGraph()
	g.AddEdge("orders", "order_items", graph.ForeignKeyEdge{
		ParentPKColumns: "id",
		ChildPKColumns:  "id",
		ChildFKColumns:  "order_id",
	})

	cfg := testArchiverConfig()
	cfg.IsDebug = true
	a := New(pool, g, cfg, "public", logger.NewDefault())

	rows := types.RowBatch{{"id": 1}}
	err = a.Archive(context.Background(), "orders", rows, "id", 0)
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())

	steps := a.Plan().Steps()
	require.Len(t, steps, 3)
	require.Equal(t, "order_items", steps[0].Table)
	require.False(t, steps[0].Self)
	require.Equal(t, "order_items", steps[1].Table)
	require.True(t, steps[1].Self)
	require.Equal(t, "orders", steps[2].Table)
	require.True(t, steps[2].Self)
}

func TestArchive_ToArchiveFalseSkipsMirror(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	g := graph.NewDependencyGraph()
	g.AddTable("orders")

	cfg := testArchiverConfig()
	cfg.ToArchive = false

	pool.ExpectBegin()
	pool.ExpectQuery(`DELETE FROM "public"."orders" WHERE \("id"\) IN \(\(\$1\)\) RETURNING \*`).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(1))
	pool.ExpectCommit()

	a := New(pool, g, cfg, "public", logger.NewDefault())
	rows := types.RowBatch{{"id": 1}}
	err = a.Archive(context.Background(), "orders", rows, "id", 0)
	require.NoError(t, err)
	require.NoError(t, pool.ExpectationsWereMet())
}
