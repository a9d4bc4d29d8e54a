package graph

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/pgarchive/internal/catalog"
)

func TestBuilder_Build(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT table_name").
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows([]string{"table_name"}).
			AddRow("orders").
			AddRow("order_items").
			AddRow("shipments"))

	cols := []string{"parent_table", "parent_pk_columns", "child_table", "child_pk_columns", "child_fk_columns"}
	pool.ExpectQuery("WITH constraint_columns").
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("orders", "id", "order_items", "id", "order_id").
			AddRow("orders", "id", "shipments", "id", "order_id"))

	reader := catalog.NewReader(pool)
	b := NewBuilder(reader, "public")

	g, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"orders", "order_items", "shipments"}, g.Tables())
	assert.ElementsMatch(t, []string{"order_items", "shipments"}, g.ChildrenOf("orders"))

	pk, ok := g.PrimaryKey("order_items")
	assert.True(t, ok)
	assert.Equal(t, "id", pk)
}

func TestBuilder_Build_TablesQueryError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT table_name").WillReturnError(assert.AnError)

	reader := catalog.NewReader(pool)
	b := NewBuilder(reader, "public")

	_, err = b.Build(context.Background())
	assert.Error(t, err)
}

func TestBuilder_Build_ForeignKeysQueryError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT table_name").
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows([]string{"table_name"}).AddRow("orders"))
	pool.ExpectQuery("WITH constraint_columns").WillReturnError(assert.AnError)

	reader := catalog.NewReader(pool)
	b := NewBuilder(reader, "public")

	_, err = b.Build(context.Background())
	assert.Error(t, err)
}
