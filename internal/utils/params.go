package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage     = 0
	DefaultPageSize = 100
)

func GetIDParam(ctx *gin.Context) (uint, error) {
	idStr := ctx.Param("id")

	if idStr == "" {
		return 0, errors.New("ID not found")
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid ID")
	}

	return uint(id), nil
}

// GetPagination reads the page and pageSize query parameters. Pages are
// 0-indexed; malformed or out-of-range values fall back to the defaults.
func GetPagination(ctx *gin.Context) (int, int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", strconv.Itoa(DefaultPage)))

	if err != nil || page < 0 {
		page = DefaultPage
	}

	pageSize, err := strconv.Atoi(ctx.DefaultQuery("pageSize", strconv.Itoa(DefaultPageSize)))

	if err != nil || pageSize < 1 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}
