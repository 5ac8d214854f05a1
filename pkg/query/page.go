package query

import (
	"strconv"
	"strings"

	"github.com/bitechdev/RASpec/pkg/common"
	"github.com/bitechdev/RASpec/pkg/logger"
)

// Direction is a sort direction
type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

const (
	DefaultSortField = "id"
	DefaultDirection = ASC
)

// ParseDirection accepts asc/desc in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case string(ASC):
		return ASC, nil
	case string(DESC):
		return DESC, nil
	}
	return "", common.NewInvalidRangeError("invalid _order %q, expected ASC or DESC", s)
}

// PageRequest is a validated half-open item window plus ordering
type PageRequest struct {
	Start     int
	End       int
	SortField string
	Direction Direction
}

// PageSize is End - Start, always at least 1 for a resolved request
func (p PageRequest) PageSize() int {
	return p.End - p.Start
}

// PageIndex is the page containing Start. Windows not aligned to PageSize are
// served from the start of that page.
func (p PageRequest) PageIndex() int {
	return p.Start / p.PageSize()
}

// Offset is the first row of the page, derived from the page arithmetic
func (p PageRequest) Offset() int {
	return p.PageIndex() * p.PageSize()
}

// Page is one window of results together with the unpaginated match count
type Page[T any] struct {
	Items []T
	Total int64
}

// ResolvePage validates _start, _end, _sort and _order from params.
// _sort and _order default to id ASC. _embed is accepted and ignored.
func ResolvePage(params map[string]string) (PageRequest, error) {
	start, err := intParam(params, "_start")
	if err != nil {
		return PageRequest{}, err
	}
	end, err := intParam(params, "_end")
	if err != nil {
		return PageRequest{}, err
	}

	if start < 0 || end < 0 {
		return PageRequest{}, common.NewInvalidRangeError("_start and _end must be non-negative, got _start=%d _end=%d", start, end)
	}
	if end <= start {
		return PageRequest{}, common.NewInvalidRangeError("_end must be greater than _start, got _start=%d _end=%d", start, end)
	}

	page := PageRequest{
		Start:     start,
		End:       end,
		SortField: DefaultSortField,
		Direction: DefaultDirection,
	}

	if sort := params["_sort"]; sort != "" {
		page.SortField = sort
	}
	if order := params["_order"]; order != "" {
		page.Direction, err = ParseDirection(order)
		if err != nil {
			return PageRequest{}, err
		}
	}

	if embed, ok := params["_embed"]; ok {
		logger.Warn("_embed=%s is not supported and will be ignored", embed)
	}

	return page, nil
}

func intParam(params map[string]string, key string) (int, error) {
	raw, ok := params[key]
	if !ok || raw == "" {
		return 0, common.NewInvalidRangeError("missing required parameter %s", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, common.NewInvalidRangeError("parameter %s must be an integer, got %q", key, raw)
	}
	return n, nil
}
