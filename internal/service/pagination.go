package service

import "github.com/studai/studai-backend/internal/response"

// pageBounds clamps page parameters and returns limit and offset.
func pageBounds(page, perPage int) (int, int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage, perPage, (page - 1) * perPage
}

func pagination(page, perPage, total int) *response.Pagination {
	return response.NewPagination(page, perPage, total)
}
