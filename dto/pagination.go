package dto

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination is the 1-indexed page window shared by every list endpoint
type Pagination struct {
	Page  int
	Limit int
}

// Normalize applies the defaults and caps the page size
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages rounds total/limit up
func (p Pagination) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	pages := int(total) / p.Limit
	if int(total)%p.Limit > 0 {
		pages++
	}
	return pages
}
