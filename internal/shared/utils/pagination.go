package utils

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// NormalizePage applies defaults and bounds to page/limit query values
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset converts a 1-based page into a row offset
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages is a ceiling division, at least 1
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages == 0 {
		return 1
	}
	return pages
}
