package es

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page turns a 1-based page number into an offset and a clamped size.
func Page(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}
