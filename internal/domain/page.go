package domain

// DefaultPageSize bounds listings when the caller does not specify one.
const DefaultPageSize = 20

// PageRequest describes the requested slice of a listing. Page is 0-based.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to sane values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Offset returns the row offset for the normalized request.
func (p PageRequest) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// Page is one slice of a paginated result set.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
	TotalPages int
}

// NewPage assembles a page from items and the total row count.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	req = req.Normalize()
	pages := int(total) / req.Size
	if int(total)%req.Size != 0 {
		pages++
	}
	return Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
