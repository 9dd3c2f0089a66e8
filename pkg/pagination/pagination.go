package pagination

import (
	"net/http"
	"strconv"
)

const (
	defaultPerPage = 10
	maxPerPage     = 50
)

// Params holds page and size parsed from the query string.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns the first page with the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: defaultPerPage}
}

// FromRequest reads ?page= and ?per_page=. Invalid or out of range values
// keep their defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= maxPerPage {
		p.PerPage = v
	}
	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Result is a page of items with paging metadata.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewResult builds a Result. A nil data slice is returned as empty.
func NewResult[T any](data []T, totalCount int, params Params) Result[T] {
	totalPages := 0
	if params.PerPage > 0 {
		totalPages = (totalCount + params.PerPage - 1) / params.PerPage
	}
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
