package query

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/reflection"
)

// ParseValue converts a raw query-string value to the declared kind of field.
// Numeric and id-like kinds must parse; everything else, booleans included, is
// compared as given.
func ParseValue(field *reflection.Field, raw string) (interface{}, error) {
	if !field.Kind.Numeric() {
		return raw, nil
	}

	var (
		value interface{}
		err   error
	)

	switch field.Kind {
	case reflection.KindInt:
		value, err = strconv.ParseInt(raw, 10, 64)
	case reflection.KindUint:
		value, err = strconv.ParseUint(raw, 10, 64)
	case reflection.KindFloat:
		value, err = strconv.ParseFloat(raw, 64)
	case reflection.KindUUID:
		value, err = uuid.Parse(raw)
	}

	if err != nil {
		return nil, &common.ValidationError{Field: field.Name, Value: raw, Cause: err}
	}
	return value, nil
}
