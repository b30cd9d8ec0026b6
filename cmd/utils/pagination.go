package utils

import (
	"net/http"
	"strconv"

	"gorm.io/gorm"
)

// PageSize is the fixed number of items per feed page.
const PageSize = 10

// Page carries the pagination metadata callers render alongside the
// item slice.
type Page struct {
	Number     int   `json:"page"`
	Size       int   `json:"page_size"`
	TotalItems int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// Paginate counts the rows matched by query, clamps page into the valid
// range and loads one page into dest ordered by order. A page below 1 (or
// an unparsable page parameter upstream) yields the first page; a page
// past the end yields the last valid page. An empty result set is a
// single empty page, never an error.
func Paginate(query *gorm.DB, page int, order string, dest interface{}) (*Page, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	if err := query.Order(order).Offset((page - 1) * PageSize).Limit(PageSize).Find(dest).Error; err != nil {
		return nil, err
	}

	return &Page{
		Number:     page,
		Size:       PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// PageParam reads the 1-based ?page= query parameter; absent or invalid
// values come back as 0 and are clamped to the first page by Paginate.
func PageParam(r *http.Request) int {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return page
}
