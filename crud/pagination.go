package crud

import (
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the page size used when the caller supplies none.
	DefaultLimit = 10
	// MaxLimit caps the page size regardless of what the caller asks for.
	MaxLimit = 100
)

// PageOptions controls a paginated query. Zero values fall back to the
// defaults (limit 10, page 1); SortBy is "field:asc" or "field:desc".
type PageOptions struct {
	SortBy string
	Limit  int
	Page   int
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Page < 1 {
		o.Page = 1
	}
	return o
}

// Page is one page of results plus the total match counts. A page past
// the end of the result set has an empty Results and accurate totals.
type Page[T any] struct {
	Results      []T   `json:"results"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
}

// ParseSort validates a "field:direction" expression against a column
// whitelist and returns the ORDER BY clause, or "" for no ordering.
func ParseSort(sortBy string, allowed map[string]bool) (string, error) {
	if sortBy == "" {
		return "", nil
	}

	field, dir, ok := strings.Cut(sortBy, ":")
	if !ok {
		return "", fmt.Errorf("%q must be field:asc or field:desc: %w", sortBy, ErrInvalidSort)
	}

	dir = strings.ToLower(dir)
	if dir != "asc" && dir != "desc" {
		return "", fmt.Errorf("direction %q: %w", dir, ErrInvalidSort)
	}
	if !allowed[field] {
		return "", fmt.Errorf("sort field %q: %w", field, ErrInvalidSort)
	}

	return field + " " + dir, nil
}

func totalPages(total int64, limit int) int {
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}
