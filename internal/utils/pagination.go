// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"fmt"
	"strconv"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// PageMeta is the pagination block attached to list responses.
type PageMeta struct {
	Count       int64   `json:"count"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	PageSize    int     `json:"page_size"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
}

// NewPageMeta builds pagination metadata for a list response. basePath is
// the request path used to render next/previous links; links are nil when
// there is no adjacent page.
func NewPageMeta(basePath string, page, pageSize int, total int64) PageMeta {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	meta := PageMeta{
		Count:       total,
		PageSize:    pageSize,
		CurrentPage: page,
		TotalPages:  totalPages,
	}
	if page < totalPages {
		next := pageLink(basePath, page+1, pageSize)
		meta.Next = &next
	}
	if page > 1 {
		prev := pageLink(basePath, page-1, pageSize)
		meta.Previous = &prev
	}
	return meta
}

func pageLink(basePath string, page, pageSize int) string {
	return fmt.Sprintf("%s?page=%d&page_size=%d", basePath, page, pageSize)
}
