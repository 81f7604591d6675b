package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50
	// ограничение сверху, чтобы offset не переполнялся
	maxPage = 1_000_000
)

type pagination struct {
	Page  int
	Limit int
}

func (p pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePagination читает page и limit из query.
// Некорректные значения заменяются значениями по умолчанию, limit ограничен [1, 50]
func parsePagination(r *http.Request) pagination {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	if page > maxPage {
		page = maxPage
	}

	limit, err := strconv.Atoi(q.Get("limit"))
	switch {
	case err != nil:
		limit = defaultLimit
	case limit < 1:
		limit = 1
	case limit > maxLimit:
		limit = maxLimit
	}

	return pagination{Page: page, Limit: limit}
}

// totalPages всегда не меньше 1, даже для пустого списка
func totalPages(total, limit int) int {
	if total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
