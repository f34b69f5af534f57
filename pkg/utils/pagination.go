package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageParams is the window a list endpoint should return.
type PageParams struct {
	Page     int
	PageSize int
	Offset   int
}

// PageFromRequest reads the page and limit query parameters. Oversized limits
// are clamped rather than reset so clients paging large course rosters keep a
// predictable stride.
func PageFromRequest(c echo.Context) PageParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	return PageParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}
