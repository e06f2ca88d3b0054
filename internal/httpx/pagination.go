package httpx

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Page struct {
	Page     int
	PageSize int
}

// PageFrom reads ?page= and ?page_size=, clamping to sane values.
func PageFrom(r *http.Request) Page {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	return Page{Page: page, PageSize: pageSize}
}

func (p Page) Limit() int  { return p.PageSize }
func (p Page) Offset() int { return (p.Page - 1) * p.PageSize }

// Meta is the pagination block returned alongside list responses.
func (p Page) Meta(total int) map[string]any {
	return map[string]any{
		"page":        p.Page,
		"page_size":   p.PageSize,
		"total":       total,
		"total_pages": (total + p.PageSize - 1) / p.PageSize,
	}
}
