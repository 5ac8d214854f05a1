package query

import "net/url"

// SearchParam carries the free-text term
const SearchParam = "q"

// reservedParams are protocol parameters that never name an entity field
var reservedParams = map[string]struct{}{
	"_start": {},
	"_end":   {},
	"_sort":  {},
	"_order": {},
	"_embed": {},
	"id":     {},
}

// IsReserved reports whether key is a protocol parameter
func IsReserved(key string) bool {
	_, ok := reservedParams[key]
	return ok
}

// Filters is what remains of a request's parameters once protocol keys are removed
type Filters struct {
	Search string
	Fields map[string]string
}

// HasSearch reports whether a free-text term was supplied
func (f Filters) HasSearch() bool {
	return f.Search != ""
}

// ParamsFromValues flattens a query string to its first value per key
func ParamsFromValues(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

// NormalizeFilters consumes params: reserved keys are deleted in place and "q"
// becomes the free-text term. Everything else is returned as field filters.
func NormalizeFilters(params map[string]string) Filters {
	for key := range params {
		if IsReserved(key) {
			delete(params, key)
		}
	}

	var search string
	if q, ok := params[SearchParam]; ok {
		search = q
		delete(params, SearchParam)
	}

	return Filters{Search: search, Fields: params}
}
