package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// Page is a parsed offset/limit window.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage parses the offset and limit query parameters.
// Defaults are 0 and 50; limit may not exceed 500 since the cached token table is held in memory.
func ParsePage(c *gin.Context) (Page, error) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return Page{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 1 || limit > maxPageLimit {
		return Page{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxPageLimit)
	}

	return Page{Offset: offset, Limit: limit}, nil
}

// Slice returns the window of items selected by the page.
func Slice[T any](items []T, page Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
