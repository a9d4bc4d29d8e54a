package catalog

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Tables(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT table_name").
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows([]string{"table_name"}).
			AddRow("orders").
			AddRow("order_items"))

	r := NewReader(pool)
	tables, err := r.Tables(context.Background(), "public")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "order_items"}, tables)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestReader_Tables_QueryError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectQuery("SELECT table_name").WillReturnError(assert.AnError)

	r := NewReader(pool)
	_, err = r.Tables(context.Background(), "public")
	assert.Error(t, err)
	assert.ErrorContains(t, err, "catalog unavailable")
}

func TestReader_ForeignKeys(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	cols := []string{"parent_table", "parent_pk_columns", "child_table", "child_pk_columns", "child_fk_columns"}
	pool.ExpectQuery("WITH constraint_columns").
		WithArgs("public").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("orders", "id", "order_items", "id", "order_id"))

	r := NewReader(pool)
	fks, err := r.ForeignKeys(context.Background(), "public")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, "orders", fks[0].ParentTable)
	assert.Equal(t, "order_items", fks[0].ChildTable)
	assert.Equal(t, "order_id", fks[0].ChildFKColumns)
}
