// Package patch describes, per entity, which fields a partial update may set and
// how raw JSON values are coerced into them.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/bitechdev/RASpec/pkg/common"
)

// Setter coerces value and stores it in one field of entity
type Setter[E any] func(entity *E, value interface{}) error

// Fields maps wire field names to setters. Keys not in the map are not patchable.
type Fields[E any] map[string]Setter[E]

// Apply sets every recognized key of p on entity. Unknown keys are ignored.
// The first coercion failure is returned as a *common.ValidationError and leaves
// entity partially updated, so callers patch a copy when atomicity matters.
func (f Fields[E]) Apply(entity *E, p map[string]interface{}) error {
	for _, key := range slices.Sorted(maps.Keys(p)) {
		setter, ok := f[key]
		if !ok {
			continue
		}
		if err := setter(entity, p[key]); err != nil {
			return &common.ValidationError{Field: key, Value: p[key], Cause: err}
		}
	}
	return nil
}

// Known returns the keys of p that this descriptor can set
func (f Fields[E]) Known(p map[string]interface{}) []string {
	var keys []string
	for key := range p {
		if _, ok := f[key]; ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

var errNull = errors.New("null is not allowed")

// String stores JSON strings and numbers as text. null clears the field to "".
func String[E any](field func(*E) *string) Setter[E] {
	return func(e *E, v interface{}) error {
		if v == nil {
			*field(e) = ""
			return nil
		}
		if _, ok := v.(bool); ok {
			return fmt.Errorf("%v is not a string", v)
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return err
		}
		*field(e) = s
		return nil
	}
}

// Int64 accepts integral JSON numbers and base-10 integer strings.
// Fractions, booleans and null fail.
func Int64[E any](field func(*E) *int64) Setter[E] {
	return func(e *E, v interface{}) error {
		var (
			n   int64
			err error
		)
		switch x := v.(type) {
		case nil:
			return errNull
		case bool:
			return fmt.Errorf("%v is not an integer", x)
		case json.Number:
			n, err = x.Int64()
		case string:
			n, err = strconv.ParseInt(x, 10, 64)
		case float64:
			if x != math.Trunc(x) {
				return fmt.Errorf("%v is not an integer", x)
			}
			n, err = cast.ToInt64E(x)
		default:
			n, err = cast.ToInt64E(x)
		}
		if err != nil {
			return err
		}
		*field(e) = n
		return nil
	}
}

// Float64 accepts JSON numbers and numeric strings. Booleans and null fail.
func Float64[E any](field func(*E) *float64) Setter[E] {
	return func(e *E, v interface{}) error {
		var (
			n   float64
			err error
		)
		switch x := v.(type) {
		case nil:
			return errNull
		case bool:
			return fmt.Errorf("%v is not a number", x)
		case json.Number:
			n, err = x.Float64()
		case string:
			n, err = strconv.ParseFloat(x, 64)
		default:
			n, err = cast.ToFloat64E(x)
		}
		if err != nil {
			return err
		}
		*field(e) = n
		return nil
	}
}

// Bool accepts JSON booleans and the strings strconv.ParseBool knows.
// Numbers and null fail.
func Bool[E any](field func(*E) *bool) Setter[E] {
	return func(e *E, v interface{}) error {
		switch v.(type) {
		case nil:
			return errNull
		case bool, string:
		default:
			return fmt.Errorf("%v is not a boolean", v)
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return err
		}
		*field(e) = b
		return nil
	}
}

func UUID[E any](field func(*E) *uuid.UUID) Setter[E] {
	return func(e *E, v interface{}) error {
		if v == nil {
			return errNull
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%v is not a uuid string", v)
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		*field(e) = id
		return nil
	}
}

// OneOf restricts a string field to a fixed set of values
func OneOf[E any](field func(*E) *string, allowed ...string) Setter[E] {
	return func(e *E, v interface{}) error {
		if v == nil {
			return errNull
		}
		s, ok := v.(string)
		if !ok || !slices.Contains(allowed, s) {
			return fmt.Errorf("must be one of %v", allowed)
		}
		*field(e) = s
		return nil
	}
}
