package handler

import "github.com/mfgops/backend/internal/domain/shared"

// pageOf applies the list defaults so the response meta matches what the
// repository returned.
func pageOf(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = shared.DefaultPageSize
	}
	if pageSize > shared.MaxPageSize {
		pageSize = shared.MaxPageSize
	}
	return page, pageSize
}
