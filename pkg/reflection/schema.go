package reflection

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitechdev/RASpec/pkg/common"
)

// Kind classifies a field for filter coercion
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindUint
	KindFloat
	KindBool
	KindUUID
	KindTime
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindUint:
		return "unsigned"
	case KindFloat:
		return "number"
	case KindBool:
		return "boolean"
	case KindUUID:
		return "uuid"
	case KindTime:
		return "time"
	default:
		return "other"
	}
}

// Numeric reports whether filter values for this kind must be parsed before comparison
func (k Kind) Numeric() bool {
	switch k {
	case KindInt, KindUint, KindFloat, KindUUID:
		return true
	}
	return false
}

// Field describes one persisted field of a model
type Field struct {
	Name       string // wire (json) name
	Column     string
	GoName     string
	Kind       Kind
	Type       reflect.Type
	Index      []int
	PrimaryKey bool
	Writable   bool
}

// Schema is the reflected shape of a model used by filters, sorting and metadata
type Schema struct {
	Table        string
	PrimaryKey   *Field
	Fields       []*Field
	SearchFields []*Field

	byName   map[string]*Field
	byColumn map[string]*Field
}

// SearchFieldsProvider lets a model name the text fields matched by the free-text term
type SearchFieldsProvider interface {
	SearchFields() []string
}

var (
	schemaCache sync.Map
	uuidType    = reflect.TypeOf(uuid.UUID{})
	timeType    = reflect.TypeOf(time.Time{})
)

// BuildSchema reflects a model (struct, pointer or slice of either) into a Schema.
// Results are cached per type.
func BuildSchema(model any) (*Schema, error) {
	modelType := reflect.TypeOf(model)
	for modelType != nil && (modelType.Kind() == reflect.Pointer || modelType.Kind() == reflect.Slice || modelType.Kind() == reflect.Array) {
		modelType = modelType.Elem()
	}
	if modelType == nil || modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %T", model)
	}

	if cached, ok := schemaCache.Load(modelType); ok {
		return cached.(*Schema), nil
	}

	s := &Schema{
		Table:    tableName(modelType),
		byName:   make(map[string]*Field),
		byColumn: make(map[string]*Field),
	}

	walkFields(modelType, nil, func(sf reflect.StructField, index []int) {
		f := &Field{
			Name:       getJSONNameFromField(sf),
			Column:     getColumnNameFromField(sf),
			GoName:     sf.Name,
			Kind:       kindOf(sf.Type),
			Type:       sf.Type,
			Index:      index,
			PrimaryKey: isPrimaryKeyField(sf),
			Writable:   !isBunFieldScanOnly(sf.Tag.Get("bun")) && !isGormFieldReadOnly(sf.Tag.Get("gorm")),
		}
		if f.Kind == KindOther {
			// Relations and nested structs are not columns
			return
		}
		s.Fields = append(s.Fields, f)
		s.byName[f.Name] = f
		s.byColumn[f.Column] = f
		if f.PrimaryKey && s.PrimaryKey == nil {
			s.PrimaryKey = f
		}
	})

	if s.PrimaryKey == nil {
		if f, ok := s.byColumn["id"]; ok {
			f.PrimaryKey = true
			s.PrimaryKey = f
		}
	}
	if s.PrimaryKey == nil {
		return nil, fmt.Errorf("model %s has no primary key", modelType.Name())
	}

	if provider, ok := reflect.New(modelType).Interface().(SearchFieldsProvider); ok {
		for _, name := range provider.SearchFields() {
			f, ok := s.byName[name]
			if !ok {
				return nil, fmt.Errorf("model %s: unknown search field %q", modelType.Name(), name)
			}
			s.SearchFields = append(s.SearchFields, f)
		}
	}

	actual, _ := schemaCache.LoadOrStore(modelType, s)
	return actual.(*Schema), nil
}

// MustBuildSchema is BuildSchema for package-level model declarations
func MustBuildSchema(model any) *Schema {
	s, err := BuildSchema(model)
	if err != nil {
		panic(err)
	}
	return s
}

// Field looks a field up by its wire name
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// FieldByColumn looks a field up by its column name
func (s *Schema) FieldByColumn(column string) (*Field, bool) {
	f, ok := s.byColumn[column]
	return f, ok
}

// Resolve accepts either a wire name or a column name and returns the field
func (s *Schema) Resolve(name string) (*Field, bool) {
	if f, ok := s.byName[name]; ok {
		return f, true
	}
	return s.FieldByColumn(name)
}

// Columns lists the column names in declaration order
func (s *Schema) Columns() []string {
	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// Metadata describes the schema for the _meta endpoint
func (s *Schema) Metadata(resource string) common.TableMetadata {
	searchable := make(map[string]bool, len(s.SearchFields))
	for _, f := range s.SearchFields {
		searchable[f.Name] = true
	}
	meta := common.TableMetadata{Resource: resource, Table: s.Table}
	for _, f := range s.Fields {
		meta.Columns = append(meta.Columns, common.Column{
			Name:       f.Name,
			Column:     f.Column,
			Type:       f.Kind.String(),
			IsPrimary:  f.PrimaryKey,
			Searchable: searchable[f.Name],
		})
	}
	return meta
}

// GetPrimaryKeyValue extracts the primary key value from a model instance
func (s *Schema) GetPrimaryKeyValue(model any) any {
	val := reflect.ValueOf(model)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}
	return val.FieldByIndex(s.PrimaryKey.Index).Interface()
}

func kindOf(typ reflect.Type) Kind {
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ {
	case uuidType:
		return KindUUID
	case timeType:
		return KindTime
	}
	switch typ.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return KindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindUint
	case reflect.Float32, reflect.Float64:
		return KindFloat
	case reflect.Bool:
		return KindBool
	}
	return KindOther
}

func tableName(typ reflect.Type) string {
	if provider, ok := reflect.New(typ).Interface().(common.TableNameProvider); ok {
		return provider.TableName()
	}
	for i := 0; i < typ.NumField(); i++ {
		if field := typ.Field(i); isBunBaseModel(field.Type) {
			if table := ExtractTableFromBunTag(field.Tag.Get("bun")); table != "" {
				return table
			}
		}
	}
	return ToSnakeCase(typ.Name()) + "s"
}
