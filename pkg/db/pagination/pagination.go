// Package pagination normalizes page-numbered list requests.
package pagination

const (
	DefaultPageSize = 10
	MaxPageSize     = 250
)

// Normalize maps a 1-based page and requested size to an offset/limit
// pair, clamping out-of-range values to the defaults.
func Normalize(page, size int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size
}
