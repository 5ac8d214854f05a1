package jsonserver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/patch"
	"github.com/bitechdev/RASpec/pkg/query"
	"github.com/bitechdev/RASpec/pkg/reflection"
	"github.com/bitechdev/RASpec/pkg/repository"
)

// Service is the contract a resource implements for the json-server protocol.
// T is the response DTO, C the creation payload and ID the key type.
type Service[T, C any, ID comparable] interface {
	FindWithFilters(ctx context.Context, filters query.Filters, page query.PageRequest) (query.Page[T], error)
	FindWithTargetAndFilters(ctx context.Context, ref query.Reference, filters query.Filters, page query.PageRequest) (query.Page[T], error)
	FindAllByID(ctx context.Context, ids []ID) ([]T, error)
	FindByID(ctx context.Context, id ID) (T, error)
	Create(ctx context.Context, input C) (T, error)
	Update(ctx context.Context, id ID, fields map[string]interface{}) (T, error)
	UpdateMany(ctx context.Context, ids []ID, fields map[string]interface{}) ([]ID, error)
	DeleteByID(ctx context.Context, id ID) error
	DeleteMany(ctx context.Context, ids []ID) ([]ID, error)
	Schema() *reflection.Schema
	Model() interface{}
}

// Mapper converts between the stored entity E and the wire types
type Mapper[E, T, C any] struct {
	ToDTO      func(*E) T
	FromCreate func(C) (E, error)
}

// CRUDService implements Service on a repository, a patch descriptor and a mapper
type CRUDService[E, T, C any, ID comparable] struct {
	resource string
	repo     *repository.Repository[E, ID]
	fields   patch.Fields[E]
	mapper   Mapper[E, T, C]
	validate *validator.Validate
}

// NewCRUDService checks that the primary key of E has type ID and that every
// patch field names a writable, non-key field of E
func NewCRUDService[E, T, C any, ID comparable](resource string, repo *repository.Repository[E, ID], fields patch.Fields[E], mapper Mapper[E, T, C]) (*CRUDService[E, T, C, ID], error) {
	if mapper.ToDTO == nil || mapper.FromCreate == nil {
		return nil, fmt.Errorf("%s: mapper needs ToDTO and FromCreate", resource)
	}

	schema := repo.Schema()
	pkType := schema.PrimaryKey.Type
	if idType := reflect.TypeOf((*ID)(nil)).Elem(); pkType != idType {
		return nil, fmt.Errorf("%s: primary key is %s, service id type is %s", resource, pkType, idType)
	}

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		field, ok := schema.Field(key)
		switch {
		case !ok:
			return nil, fmt.Errorf("%s: patch field %s is not a field of %s", resource, key, schema.Table)
		case field.PrimaryKey:
			return nil, fmt.Errorf("%s: patch field %s maps to primary key %s", resource, key, field.GoName)
		case !field.Writable:
			return nil, fmt.Errorf("%s: patch field %s maps to read-only field %s", resource, key, field.GoName)
		}
	}

	return &CRUDService[E, T, C, ID]{
		resource: resource,
		repo:     repo,
		fields:   fields,
		mapper:   mapper,
		validate: newValidator(),
	}, nil
}

// newValidator reports json names in field errors
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func (s *CRUDService[E, T, C, ID]) Schema() *reflection.Schema {
	return s.repo.Schema()
}

// Model returns a new zero entity, used for migrations
func (s *CRUDService[E, T, C, ID]) Model() interface{} {
	return new(E)
}

func (s *CRUDService[E, T, C, ID]) FindWithFilters(ctx context.Context, filters query.Filters, page query.PageRequest) (query.Page[T], error) {
	pred, err := query.BuildPredicate(s.Schema(), filters)
	if err != nil {
		return query.Page[T]{}, err
	}

	entities, total, err := s.repo.Query(ctx, pred, page)
	if err != nil {
		return query.Page[T]{}, err
	}

	return query.Page[T]{Items: s.toDTOs(entities), Total: total}, nil
}

func (s *CRUDService[E, T, C, ID]) FindWithTargetAndFilters(ctx context.Context, ref query.Reference, filters query.Filters, page query.PageRequest) (query.Page[T], error) {
	field, err := ref.Field(s.Schema())
	if err != nil {
		return query.Page[T]{}, err
	}
	return s.FindWithFilters(ctx, query.WithReference(filters, field, ref.TargetID), page)
}

func (s *CRUDService[E, T, C, ID]) FindAllByID(ctx context.Context, ids []ID) ([]T, error) {
	entities, err := s.repo.FindAllByID(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	return s.toDTOs(entities), nil
}

func (s *CRUDService[E, T, C, ID]) FindByID(ctx context.Context, id ID) (T, error) {
	var zero T
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, s.notFound(id, err)
	}
	return s.mapper.ToDTO(entity), nil
}

// Create validates input with its `validate` tags before mapping and inserting it
func (s *CRUDService[E, T, C, ID]) Create(ctx context.Context, input C) (T, error) {
	var zero T
	if err := s.validateInput(input); err != nil {
		return zero, err
	}

	entity, err := s.mapper.FromCreate(input)
	if err != nil {
		return zero, err
	}

	if err := s.repo.Insert(ctx, &entity); err != nil {
		return zero, err
	}

	logger.Info("Created %s %v", s.resource, s.Schema().GetPrimaryKeyValue(&entity))
	return s.mapper.ToDTO(&entity), nil
}

// Update applies the recognized keys of fields to one entity
func (s *CRUDService[E, T, C, ID]) Update(ctx context.Context, id ID, fields map[string]interface{}) (T, error) {
	var zero T
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, s.notFound(id, err)
	}

	if err := s.fields.Apply(entity, fields); err != nil {
		return zero, err
	}

	if err := s.repo.Update(ctx, entity); err != nil {
		return zero, s.notFound(id, err)
	}
	logger.Debug("Updated %s %v fields %v", s.resource, id, s.fields.Known(fields))
	return s.mapper.ToDTO(entity), nil
}

func (s *CRUDService[E, T, C, ID]) DeleteByID(ctx context.Context, id ID) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return s.notFound(id, err)
	}
	logger.Info("Deleted %s %v", s.resource, id)
	return nil
}

func (s *CRUDService[E, T, C, ID]) toDTOs(entities []E) []T {
	dtos := make([]T, 0, len(entities))
	for i := range entities {
		dtos = append(dtos, s.mapper.ToDTO(&entities[i]))
	}
	return dtos
}

func (s *CRUDService[E, T, C, ID]) idOf(entity *E) ID {
	return s.Schema().GetPrimaryKeyValue(entity).(ID)
}

// notFound translates repository.ErrNotFound, other errors pass through
func (s *CRUDService[E, T, C, ID]) notFound(id ID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &common.NotFoundError{Resource: s.resource, ID: id}
	}
	return err
}

func (s *CRUDService[E, T, C, ID]) validateInput(input C) error {
	v := reflect.ValueOf(input)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return &common.ValidationError{Field: s.resource, Value: nil, Cause: errors.New("empty payload")}
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := s.validate.Struct(input)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &common.ValidationError{Field: fe.Field(), Value: fe.Value(), Cause: fmt.Errorf("failed on %s", fe.Tag())}
	}
	return err
}

var _ Service[struct{}, struct{}, int64] = (*CRUDService[struct{ ID int64 }, struct{}, struct{}, int64])(nil)
