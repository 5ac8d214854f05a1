package query

import (
	"maps"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/bitechdev/RASpec/pkg/logger"
	"github.com/bitechdev/RASpec/pkg/reflection"
)

// Condition is an exact equality on one column
type Condition struct {
	Column string
	Value  interface{}
}

// Predicate is a conjunction of an optional free-text group and equality conditions.
// The zero value matches every row.
type Predicate struct {
	SearchColumns []string
	SearchTerm    string
	Conditions    []Condition
}

// IsEmpty reports whether the predicate places no restriction
func (p Predicate) IsEmpty() bool {
	return !p.hasSearch() && len(p.Conditions) == 0
}

func (p Predicate) hasSearch() bool {
	return p.SearchTerm != "" && len(p.SearchColumns) > 0
}

// BuildPredicate turns normalized filters into a predicate over schema.
// Unknown fields and empty values are skipped; values of numeric and id-like
// fields that do not parse fail with a *common.ValidationError.
func BuildPredicate(schema *reflection.Schema, filters Filters) (Predicate, error) {
	var pred Predicate

	if filters.HasSearch() {
		for _, f := range schema.SearchFields {
			pred.SearchColumns = append(pred.SearchColumns, f.Column)
		}
		pred.SearchTerm = filters.Search
	}

	for _, key := range slices.Sorted(maps.Keys(filters.Fields)) {
		raw := filters.Fields[key]
		if raw == "" {
			continue
		}

		field, ok := schema.Resolve(key)
		if !ok {
			logger.Warn("Ignoring filter on unknown field %s of %s", key, schema.Table)
			continue
		}

		value, err := ParseValue(field, raw)
		if err != nil {
			return Predicate{}, err
		}
		pred.Conditions = append(pred.Conditions, Condition{Column: field.Column, Value: value})
	}

	return pred, nil
}

// Sqlizer renders the predicate with squirrel. It returns nil for an empty predicate.
func (p Predicate) Sqlizer() sq.Sqlizer {
	if p.IsEmpty() {
		return nil
	}

	and := sq.And{}
	if p.hasSearch() {
		pattern := "%" + escapeLike(strings.ToLower(p.SearchTerm)) + "%"
		or := sq.Or{}
		for _, col := range p.SearchColumns {
			or = append(or, sq.Expr("LOWER("+col+") LIKE ? ESCAPE '\\'", pattern))
		}
		and = append(and, or)
	}
	for _, c := range p.Conditions {
		and = append(and, sq.Eq{c.Column: c.Value})
	}
	return and
}

// ToSQL renders the predicate as a "?" placeholder WHERE fragment.
// An empty predicate renders as an empty string.
func (p Predicate) ToSQL() (string, []interface{}, error) {
	s := p.Sqlizer()
	if s == nil {
		return "", nil, nil
	}
	return s.ToSql()
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
