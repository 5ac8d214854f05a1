package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bitechdev/RASpec/pkg/common"
)

type bunTestRow struct {
	bun.BaseModel `bun:"table:test_rows"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Name          string `bun:"name,notnull"`
	Email         string `bun:"email"`
	Age           int    `bun:"age"`
}

func setupBunTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err, "Failed to open SQLite database")
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().
		Model((*bunTestRow)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err, "Failed to create test table")

	return db
}

func insertRows(t *testing.T, adapter common.Database, rows ...*bunTestRow) {
	t.Helper()
	for _, row := range rows {
		_, err := adapter.NewInsert().Model(row).Exec(context.Background())
		require.NoError(t, err)
	}
}

func TestBunInsertQuery_WritesGeneratedID(t *testing.T) {
	adapter := NewBunAdapter(setupBunTestDB(t))
	ctx := context.Background()

	first := &bunTestRow{Name: "John Doe", Email: "john@example.com", Age: 30}
	result, err := adapter.NewInsert().Model(first).Exec(ctx)
	require.NoError(t, err, "Insert should succeed")
	assert.Equal(t, int64(1), result.RowsAffected())
	assert.Equal(t, int64(1), first.ID, "generated id is written back")

	second := &bunTestRow{Name: "Jane Doe"}
	_, err = adapter.NewInsert().Model(second).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestBunSelectQuery(t *testing.T) {
	adapter := NewBunAdapter(setupBunTestDB(t))
	ctx := context.Background()
	insertRows(t, adapter,
		&bunTestRow{Name: "alice", Age: 30},
		&bunTestRow{Name: "bob", Age: 40},
		&bunTestRow{Name: "carol", Age: 50},
	)

	t.Run("count before paging", func(t *testing.T) {
		var rows []bunTestRow
		q := adapter.NewSelect().Model(&rows).Where("age >= ?", 40)

		total, err := q.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, total)

		err = q.Order("age DESC").Limit(1).Offset(1).Scan(ctx, &rows)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "bob", rows[0].Name)
	})

	t.Run("exists", func(t *testing.T) {
		found, err := adapter.NewSelect().Model((*bunTestRow)(nil)).Where("name = ?", "carol").Exists(ctx)
		require.NoError(t, err)
		assert.True(t, found)

		found, err = adapter.NewSelect().Model((*bunTestRow)(nil)).Where("name = ?", "dave").Exists(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("in list", func(t *testing.T) {
		var rows []bunTestRow
		err := adapter.NewSelect().Model(&rows).
			Where("id IN (?,?)", 1, 3).
			Order("id ASC").
			Scan(ctx, &rows)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "alice", rows[0].Name)
		assert.Equal(t, "carol", rows[1].Name)
	})
}

func TestBunUpdateQuery(t *testing.T) {
	adapter := NewBunAdapter(setupBunTestDB(t))
	ctx := context.Background()
	row := &bunTestRow{Name: "alice", Email: "alice@example.com", Age: 30}
	insertRows(t, adapter, row)

	row.Email = ""
	row.Age = 31
	result, err := adapter.NewUpdate().Model(row).Where("id = ?", row.ID).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RowsAffected())

	var rows []bunTestRow
	require.NoError(t, adapter.NewSelect().Model(&rows).Scan(ctx, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Email, "zero values are written")
	assert.Equal(t, 31, rows[0].Age)

	missing := &bunTestRow{ID: 99, Name: "ghost"}
	result, err = adapter.NewUpdate().Model(missing).Where("id = ?", missing.ID).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.RowsAffected())
}

func TestBunDeleteQuery(t *testing.T) {
	adapter := NewBunAdapter(setupBunTestDB(t))
	ctx := context.Background()
	insertRows(t, adapter, &bunTestRow{Name: "alice"}, &bunTestRow{Name: "bob"})

	result, err := adapter.NewDelete().Model((*bunTestRow)(nil)).Where("name = ?", "alice").Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.RowsAffected())

	result, err = adapter.NewDelete().Model((*bunTestRow)(nil)).Where("name = ?", "alice").Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.RowsAffected())
}

func TestBunRunInTransaction(t *testing.T) {
	adapter := NewBunAdapter(setupBunTestDB(t))
	ctx := context.Background()

	count := func() int {
		n, err := adapter.NewSelect().Model((*bunTestRow)(nil)).Count(ctx)
		require.NoError(t, err)
		return n
	}

	err := adapter.RunInTransaction(ctx, func(tx common.Database) error {
		_, err := tx.NewInsert().Model(&bunTestRow{Name: "committed"}).Exec(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = adapter.RunInTransaction(ctx, func(tx common.Database) error {
		if _, err := tx.NewInsert().Model(&bunTestRow{Name: "rolled back"}).Exec(ctx); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.RunInTransaction(ctx, func(inner common.Database) error {
			if _, err := inner.NewInsert().Model(&bunTestRow{Name: "inner"}).Exec(ctx); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count(), "failed transaction leaves no rows behind")
}
