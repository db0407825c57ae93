package listing

import (
	"strconv"
	"strings"
)

// Reserved parameter names understood by the users read endpoint.
const (
	SearchKey  = "q"
	StatusKey  = "status"
	PageParam  = "_page"
	LimitParam = "_limit"
)

// FilterSet maps filter keys to values. A cleared filter is absent, never
// stored with an empty value.
type FilterSet map[string]string

// Clone returns an independent copy.
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Pagination selects one slice of the result set. Both fields are 1-based
// positive integers.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Query is the Filter/Pagination state that drives the fetch cycle.
type Query struct {
	Filters    FilterSet  `json:"filters"`
	Pagination Pagination `json:"pagination"`
}

// NewQuery returns an unfiltered query on the first page.
func NewQuery(pageSize int) Query {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Query{
		Filters:    FilterSet{},
		Pagination: Pagination{Page: 1, PageSize: pageSize},
	}
}

// DefaultPageSize matches the table's initial page size.
const DefaultPageSize = 10

// Clone returns a copy that shares no state with q.
func (q Query) Clone() Query {
	return Query{Filters: q.Filters.Clone(), Pagination: q.Pagination}
}

// SetFilter upserts key, or removes it when value is blank. The page always
// resets to 1 because the result set may have changed.
func (q *Query) SetFilter(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	if q.Filters == nil {
		q.Filters = FilterSet{}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(q.Filters, key)
	} else {
		q.Filters[key] = value
	}
	q.Pagination.Page = 1
}

// SetPage replaces the pagination. Non-positive values keep the current one.
func (q *Query) SetPage(page, pageSize int) {
	if page >= 1 {
		q.Pagination.Page = page
	}
	if pageSize >= 1 {
		q.Pagination.PageSize = pageSize
	}
}

// Filter returns the current value for key.
func (q Query) Filter(key string) string {
	return q.Filters[key]
}

// Params merges filters and pagination into request query parameters.
// Pagination wins over a filter with the same name.
func (q Query) Params() map[string]string {
	out := make(map[string]string, len(q.Filters)+2)
	for k, v := range q.Filters {
		out[k] = v
	}
	out[PageParam] = strconv.Itoa(q.Pagination.Page)
	out[LimitParam] = strconv.Itoa(q.Pagination.PageSize)
	return out
}
