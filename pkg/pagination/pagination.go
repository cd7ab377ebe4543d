package pagination

import (
	"github.com/expresskart/expresskart-backend/pkg/types"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds page-based pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Normalize enforces the default and maximum limits and a 1-based page.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Meta builds the response pagination block for a page and a total row count.
func Meta(p Params, total int64) types.PaginationMeta {
	n := p.Normalize()
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(n.Limit) - 1) / int64(n.Limit))
	}
	return types.PaginationMeta{
		CurrentPage: n.Page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       n.Limit,
		HasNextPage: n.Page < totalPages,
		HasPrevPage: n.Page > 1,
	}
}
