package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// GetPaginationParams extracts pagination parameters from the request.
// Values that are not integers fall back to the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = constants.MinPage
	}
	pageSize, err := strconv.Atoi(c.Query("page_size"))
	if err != nil {
		pageSize = constants.DefaultPageSize
	}

	return NewPaginationParams(page, pageSize)
}

// NewPaginationParams clamps page to at least 1 and pageSize to [1, 100].
func NewPaginationParams(page, pageSize int) PaginationParams {
	if page < constants.MinPage {
		page = constants.MinPage
	}
	if pageSize < constants.MinPageSize {
		pageSize = constants.MinPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
}
