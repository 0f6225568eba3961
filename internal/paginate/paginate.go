// Package paginate implements page-number pagination over counted result sets.
package paginate

import "strconv"

const DefaultPerPage = 10

// Page is one page of items plus the numbers needed to render navigation.
type Page[T any] struct {
	Items    []T `json:"items"`
	Number   int `json:"number"`    // 1-based
	NumPages int `json:"num_pages"` // always >= 1
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
}

func (p Page[T]) HasNext() bool     { return p.Number < p.NumPages }
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}
func (p Page[T]) NextNumber() int     { return p.Number + 1 }
func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

// Request is a resolved page position: Limit/Offset for the query, Number for display.
type Request struct {
	Number   int
	NumPages int
	Limit    int
	Offset   int
}

// Resolve turns a raw "page" query value into a valid page. A missing or
// non-numeric value yields page 1; a value past the end yields the last page.
func Resolve(raw string, total, perPage int) Request {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	numPages := 1
	if total > 0 {
		numPages = (total + perPage - 1) / perPage
	}
	n, err := strconv.Atoi(raw)
	switch {
	case err != nil, n < 1:
		n = 1
	case n > numPages:
		n = numPages
	}
	return Request{Number: n, NumPages: numPages, Limit: perPage, Offset: (n - 1) * perPage}
}

// New assembles a Page from the items fetched for req.
func New[T any](items []T, req Request, total int) Page[T] {
	return Page[T]{
		Items:    items,
		Number:   req.Number,
		NumPages: req.NumPages,
		PerPage:  req.Limit,
		Total:    total,
	}
}
