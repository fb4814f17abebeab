package utils

// Pagination describes one page of a listing in API responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// TotalPages returns the number of pages for a listing. An empty listing still
// has one (empty) page so that any requested page number resolves somewhere.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		pageSize = 1
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage resolves a requested 1-indexed page number against the listing
// size: numbers before the first page resolve to 1, numbers past the end
// resolve to the last page. Out-of-range requests never error.
func ClampPage(requested int, total int64, pageSize int) int {
	if requested < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize); requested > last {
		return last
	}
	return requested
}

// PageWindow returns the clamped page plus the SQL offset for it.
func PageWindow(requested int, total int64, pageSize int) (page, offset int) {
	page = ClampPage(requested, total, pageSize)
	return page, (page - 1) * pageSize
}

// NewPagination builds the response metadata for a clamped page.
func NewPagination(page int, total int64, pageSize int) Pagination {
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: TotalPages(total, pageSize),
	}
}
