package pagination

import (
	"net/url"
	"strconv"
)

const DefaultPageSize = 10

// Pagination is a 1-based page number request.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"-"`
}

// Normalize clamps the page to at least 1 and applies the default page size.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}

// Page is the envelope returned by paginated list endpoints.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// BuildPage wraps results with next/previous links derived from base, keeping every other
// query parameter of base intact.
func BuildPage[T any](results []T, total int64, p Pagination, base *url.URL) Page[T] {
	p = p.Normalize()
	if results == nil {
		results = []T{}
	}

	page := Page[T]{Count: total, Results: results}
	if base == nil {
		return page
	}

	if int64(p.Page*p.PageSize) < total {
		next := pageURL(base, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(base, p.Page-1)
		page.Previous = &prev
	}
	return page
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
