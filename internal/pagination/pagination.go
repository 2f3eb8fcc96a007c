// Package pagination implements offset-based paging for list endpoints.
package pagination

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Params carries validated paging inputs: page >= 1, 1 <= size <= MaxSize.
type Params struct {
	Page int
	Size int
}

// Valid reports whether the params are within the accepted range.
func (p Params) Valid() bool {
	return p.Page >= 1 && p.Size >= 1 && p.Size <= MaxSize
}

// Offset returns the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Size
}

// Meta describes one page of a larger result set.
type Meta struct {
	Page        int  `json:"page"`
	Size        int  `json:"size"`
	Total       int  `json:"total"`
	Pages       int  `json:"pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewMeta derives paging metadata from the request params and the total row
// count. Pages is ceil(total/size).
func NewMeta(p Params, total int) Meta {
	pages := 0
	if total > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Meta{
		Page:        p.Page,
		Size:        p.Size,
		Total:       total,
		Pages:       pages,
		HasNext:     p.Page < pages,
		HasPrevious: p.Page > 1,
	}
}
