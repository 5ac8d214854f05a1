package query

import (
	"fmt"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/reflection"
)

// Reference scopes a list to the rows whose TargetField equals TargetID
type Reference struct {
	TargetField string
	TargetID    string
}

// Field resolves the target field against schema. An unknown field is a
// validation error rather than a silently unscoped list.
func (r Reference) Field(schema *reflection.Schema) (*reflection.Field, error) {
	field, ok := schema.Resolve(r.TargetField)
	if !ok {
		return nil, &common.ValidationError{
			Field: r.TargetField,
			Value: r.TargetID,
			Cause: fmt.Errorf("unknown reference field for %s", schema.Table),
		}
	}
	if r.TargetID == "" {
		return nil, &common.ValidationError{Field: r.TargetField, Value: r.TargetID, Cause: fmt.Errorf("empty reference id")}
	}
	return field, nil
}

// WithReference returns a copy of filters with field bound to id. It is applied
// after normalization so reserved names cannot drop it, and it replaces any
// user-supplied filter on the same field, by wire or column name.
func WithReference(filters Filters, field *reflection.Field, id string) Filters {
	fields := make(map[string]string, len(filters.Fields)+1)
	for k, v := range filters.Fields {
		if k == field.Name || k == field.Column {
			continue
		}
		fields[k] = v
	}
	fields[field.Name] = id
	return Filters{Search: filters.Search, Fields: fields}
}
