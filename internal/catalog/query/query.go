// Package query holds the pure pagination and filtering used by catalog and
// certificate listings. Nothing here touches storage or transport.
package query

import (
	"slices"
	"strings"

	"academy/internal/catalog/models"
)

const (
	DefaultPageSize = 9
	MaxPageSize     = 100
)

// Page is one slice of a larger ordered result.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	Total       int
	PageSize    int
}

// Paginate returns the requested page of items. The page is clamped to
// [1, TotalPages] and TotalPages is at least 1, so an empty input still
// reports page 1 of 1. pageSize <= 0 uses DefaultPageSize.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	page = min(max(page, 1), totalPages)

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	out := make([]T, end-start)
	copy(out, items[start:end])

	return Page[T]{
		Items:       out,
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       total,
		PageSize:    pageSize,
	}
}

// MapPage converts the items of a page, keeping its position.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{
		Items:       out,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
		Total:       p.Total,
		PageSize:    p.PageSize,
	}
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	Search   string
	Category string
}

// Filterable exposes the text searched and the category matched by Filter.
type Filterable interface {
	FilterText() []string
	FilterCategory() string
}

// Apply keeps items matching f, preserving order. Search is a
// case-insensitive substring match over FilterText; Category is exact.
func Apply[T Filterable](items []T, f Filter) []T {
	search := strings.TrimSpace(f.Search)
	category := strings.TrimSpace(f.Category)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if category != "" && item.FilterCategory() != category {
			continue
		}
		if search != "" && !ContainsFold(item.FilterText(), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FilterCourses applies f over course title and description.
func FilterCourses(courses []*models.Course, f Filter) []*models.Course {
	return Apply(courses, f)
}

// ContainsFold reports whether any field contains term, ignoring case.
// An empty term matches everything.
func ContainsFold(fields []string, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return slices.ContainsFunc(fields, func(field string) bool {
		return strings.Contains(strings.ToLower(field), needle)
	})
}

// ClampPageSize bounds a requested page size to (0, MaxPageSize].
func ClampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	return min(pageSize, MaxPageSize)
}
