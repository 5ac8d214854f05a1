package database

import (
	"context"
	"database/sql"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
)

// BunAdapter adapts Bun to work with our Database interface.
// It wraps either a *bun.DB or a bun.Tx.
type BunAdapter struct {
	db   bun.IDB
	inTx bool
}

// NewBunAdapter creates a new Bun adapter
func NewBunAdapter(db *bun.DB) *BunAdapter {
	return &BunAdapter{db: db}
}

func (b *BunAdapter) NewSelect() common.SelectQuery {
	return &BunSelectQuery{query: b.db.NewSelect()}
}

func (b *BunAdapter) NewInsert() common.InsertQuery {
	return &BunInsertQuery{
		query:     b.db.NewInsert(),
		returning: b.db.Dialect().Features().Has(feature.InsertReturning),
	}
}

func (b *BunAdapter) NewUpdate() common.UpdateQuery {
	return &BunUpdateQuery{query: b.db.NewUpdate()}
}

func (b *BunAdapter) NewDelete() common.DeleteQuery {
	return &BunDeleteQuery{query: b.db.NewDelete()}
}

// RunInTransaction starts a transaction, or joins the current one when the adapter
// already wraps a bun.Tx.
func (b *BunAdapter) RunInTransaction(ctx context.Context, fn func(common.Database) error) error {
	if b.inTx {
		return fn(b)
	}
	return b.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&BunAdapter{db: tx, inTx: true})
	})
}

// BunSelectQuery implements SelectQuery for Bun
type BunSelectQuery struct {
	query *bun.SelectQuery
}

func (b *BunSelectQuery) Model(model interface{}) common.SelectQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunSelectQuery) Where(query string, args ...interface{}) common.SelectQuery {
	b.query = b.query.Where(query, args...)
	return b
}

func (b *BunSelectQuery) Order(order string) common.SelectQuery {
	b.query = b.query.OrderExpr(order)
	return b
}

func (b *BunSelectQuery) Limit(n int) common.SelectQuery {
	b.query = b.query.Limit(n)
	return b
}

func (b *BunSelectQuery) Offset(n int) common.SelectQuery {
	b.query = b.query.Offset(n)
	return b
}

func (b *BunSelectQuery) Scan(ctx context.Context, dest interface{}) error {
	return b.query.Scan(ctx, dest)
}

func (b *BunSelectQuery) Count(ctx context.Context) (int, error) {
	return b.query.Count(ctx)
}

func (b *BunSelectQuery) Exists(ctx context.Context) (bool, error) {
	return b.query.Exists(ctx)
}

// BunInsertQuery implements InsertQuery for Bun.
// On dialects with INSERT ... RETURNING the whole row is read back into the model.
type BunInsertQuery struct {
	query     *bun.InsertQuery
	returning bool
}

func (b *BunInsertQuery) Model(model interface{}) common.InsertQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunInsertQuery) Exec(ctx context.Context) (common.Result, error) {
	if b.returning {
		b.query = b.query.Returning("*")
	}
	result, err := b.query.Exec(ctx)
	return &BunResult{result: result}, err
}

// BunUpdateQuery implements UpdateQuery for Bun
type BunUpdateQuery struct {
	query *bun.UpdateQuery
}

func (b *BunUpdateQuery) Model(model interface{}) common.UpdateQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunUpdateQuery) Where(query string, args ...interface{}) common.UpdateQuery {
	b.query = b.query.Where(query, args...)
	return b
}

func (b *BunUpdateQuery) Exec(ctx context.Context) (common.Result, error) {
	result, err := b.query.Exec(ctx)
	return &BunResult{result: result}, err
}

// BunDeleteQuery implements DeleteQuery for Bun
type BunDeleteQuery struct {
	query *bun.DeleteQuery
}

func (b *BunDeleteQuery) Model(model interface{}) common.DeleteQuery {
	b.query = b.query.Model(model)
	return b
}

func (b *BunDeleteQuery) Where(query string, args ...interface{}) common.DeleteQuery {
	b.query = b.query.Where(query, args...)
	return b
}

func (b *BunDeleteQuery) Exec(ctx context.Context) (common.Result, error) {
	result, err := b.query.Exec(ctx)
	return &BunResult{result: result}, err
}

// BunResult implements Result for Bun
type BunResult struct {
	result sql.Result
}

func (b *BunResult) RowsAffected() int64 {
	if b.result == nil {
		return 0
	}
	rows, _ := b.result.RowsAffected()
	return rows
}
