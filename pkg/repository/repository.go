package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/query"
	"github.com/bitechdev/RASpec/pkg/reflection"
)

// ErrNotFound is returned by single-row operations on a missing primary key
var ErrNotFound = errors.New("record not found")

// Repository is the storage capability for one model type E keyed by ID.
// It runs on any common.Database, so the same code serves GORM and Bun.
type Repository[E any, ID comparable] struct {
	db     common.Database
	schema *reflection.Schema
}

// New reflects E and binds it to db
func New[E any, ID comparable](db common.Database) (*Repository[E, ID], error) {
	schema, err := reflection.BuildSchema(new(E))
	if err != nil {
		return nil, err
	}
	return &Repository[E, ID]{db: db, schema: schema}, nil
}

func (r *Repository[E, ID]) Schema() *reflection.Schema {
	return r.schema
}

func (r *Repository[E, ID]) pk() string {
	return r.schema.PrimaryKey.Column
}

func (r *Repository[E, ID]) withDB(db common.Database) *Repository[E, ID] {
	return &Repository[E, ID]{db: db, schema: r.schema}
}

// Query returns the page of rows matching pred and the total number of matches.
// The sort field may be a wire or column name; anything else fails with
// common.ErrUnknownColumn.
func (r *Repository[E, ID]) Query(ctx context.Context, pred query.Predicate, page query.PageRequest) ([]E, int64, error) {
	sortField, ok := r.schema.Resolve(page.SortField)
	if !ok {
		return nil, 0, fmt.Errorf("%w: cannot sort %s by %q", common.ErrUnknownColumn, r.schema.Table, page.SortField)
	}

	where, args, err := pred.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to render filter: %w", err)
	}

	items := make([]E, 0)
	q := r.db.NewSelect().Model(&items)
	if where != "" {
		q = q.Where(where, args...)
	}

	// Count before pagination
	total, err := q.Count(ctx)
	if err != nil {
		logger.Error("Error counting %s: %v", r.schema.Table, err)
		return nil, 0, fmt.Errorf("failed to count %s: %w", r.schema.Table, err)
	}

	q = q.Order(fmt.Sprintf("%s %s", sortField.Column, page.Direction)).
		Limit(page.PageSize()).
		Offset(page.Offset())

	if err := q.Scan(ctx, &items); err != nil {
		logger.Error("Error querying %s: %v", r.schema.Table, err)
		return nil, 0, fmt.Errorf("failed to query %s: %w", r.schema.Table, err)
	}

	return items, int64(total), nil
}

// FindByID returns ErrNotFound when no row has the given primary key
func (r *Repository[E, ID]) FindByID(ctx context.Context, id ID) (*E, error) {
	items := make([]E, 0, 1)
	err := r.db.NewSelect().Model(&items).
		Where(r.pk()+" = ?", id).
		Limit(1).
		Scan(ctx, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %v: %w", r.schema.Table, id, err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// FindAllByID returns the subset of ids that exist, ordered by primary key
func (r *Repository[E, ID]) FindAllByID(ctx context.Context, ids []ID) ([]E, error) {
	items := make([]E, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	where, args, err := sq.Eq{r.pk(): ids}.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.NewSelect().Model(&items).
		Where(where, args...).
		Order(r.pk() + " ASC").
		Scan(ctx, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", r.schema.Table, err)
	}
	return items, nil
}

// ExistsByID reports whether a row with the given primary key exists
func (r *Repository[E, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	exists, err := r.db.NewSelect().Model(new(E)).Where(r.pk()+" = ?", id).Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check %s %v: %w", r.schema.Table, id, err)
	}
	return exists, nil
}

// Insert persists a new row; generated keys are written back into entity
func (r *Repository[E, ID]) Insert(ctx context.Context, entity *E) error {
	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", r.schema.Table, err)
	}
	return nil
}

// Update writes every column of entity to the row with its primary key
func (r *Repository[E, ID]) Update(ctx context.Context, entity *E) error {
	id := r.schema.GetPrimaryKeyValue(entity)
	result, err := r.db.NewUpdate().Model(entity).Where(r.pk()+" = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update %s %v: %w", r.schema.Table, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Save inserts entity when its primary key is the zero value and updates it otherwise
func (r *Repository[E, ID]) Save(ctx context.Context, entity *E) error {
	if reflect.ValueOf(r.schema.GetPrimaryKeyValue(entity)).IsZero() {
		return r.Insert(ctx, entity)
	}
	return r.Update(ctx, entity)
}

// SaveAll saves every entity in one transaction
func (r *Repository[E, ID]) SaveAll(ctx context.Context, entities []E) error {
	if len(entities) == 0 {
		return nil
	}
	return r.db.RunInTransaction(ctx, func(tx common.Database) error {
		txRepo := r.withDB(tx)
		for i := range entities {
			if err := txRepo.Save(ctx, &entities[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByID returns ErrNotFound when nothing was deleted
func (r *Repository[E, ID]) DeleteByID(ctx context.Context, id ID) error {
	result, err := r.db.NewDelete().Model(new(E)).Where(r.pk()+" = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s %v: %w", r.schema.Table, id, err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll deletes the given entities by primary key
func (r *Repository[E, ID]) DeleteAll(ctx context.Context, entities []E) error {
	if len(entities) == 0 {
		return nil
	}

	ids := make([]interface{}, 0, len(entities))
	for i := range entities {
		ids = append(ids, r.schema.GetPrimaryKeyValue(&entities[i]))
	}

	where, args, err := sq.Eq{r.pk(): ids}.ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.NewDelete().Model(new(E)).Where(where, args...).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.schema.Table, err)
	}
	return nil
}
