package handler

import (
	"time"

	"academy/internal/catalog/models"
	"academy/internal/catalog/query"
)

// PageMeta describes a page's position for pagination widgets.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

type PageResponse[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func toPageResponse[T, U any](p query.Page[T], fn func(T) U) PageResponse[U] {
	mapped := query.MapPage(p, fn)
	return PageResponse[U]{
		Data: mapped.Items,
		Meta: PageMeta{
			CurrentPage: p.CurrentPage,
			TotalPages:  p.TotalPages,
			Total:       p.Total,
			PerPage:     p.PageSize,
		},
	}
}

// PublicCourse is the catalog view served to visitors. Flags, ordering and
// timestamps are administrative and omitted.
type PublicCourse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	SubCourses  []PublicSubCourse `json:"sub_courses"`
}

type PublicSubCourse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Prerequisites []string `json:"prerequisites"`
}

type PublicSubCourseResponse struct {
	Course    PublicCourse    `json:"course"`
	SubCourse PublicSubCourse `json:"sub_course"`
}

func toPublicCourse(c *models.Course) PublicCourse {
	subs := make([]PublicSubCourse, len(c.SubCourses))
	for i, sc := range c.SubCourses {
		subs[i] = toPublicSubCourse(sc)
	}
	return PublicCourse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Slug:        string(c.Slug),
		Description: c.Description,
		Image:       c.Image,
		SubCourses:  subs,
	}
}

func toPublicSubCourse(sc *models.SubCourse) PublicSubCourse {
	return PublicSubCourse{
		ID:            sc.ID.String(),
		Title:         sc.Title,
		Slug:          string(sc.Slug),
		Description:   sc.Description,
		Image:         sc.Image,
		Prerequisites: sc.Prerequisites,
	}
}

// CourseResponse is the administrative view of a course.
type CourseResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Slug        string              `json:"slug"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
	Order       int                 `json:"order"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	SubCourses  []SubCourseResponse `json:"sub_courses"`
}

type SubCourseResponse struct {
	ID            string    `json:"id"`
	CourseID      string    `json:"course_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Prerequisites []string  `json:"prerequisites"`
	Order         int       `json:"order"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCourseResponse(c *models.Course) CourseResponse {
	subs := make([]SubCourseResponse, len(c.SubCourses))
	for i, sc := range c.SubCourses {
		subs[i] = toSubCourseResponse(sc)
	}
	return CourseResponse{
		ID:          c.ID.String(),
		Title:       c.Title,
		Slug:        string(c.Slug),
		Description: c.Description,
		Image:       c.Image,
		Order:       c.Order,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		SubCourses:  subs,
	}
}

func toSubCourseResponse(sc *models.SubCourse) SubCourseResponse {
	return SubCourseResponse{
		ID:            sc.ID.String(),
		CourseID:      sc.CourseID.String(),
		Title:         sc.Title,
		Slug:          string(sc.Slug),
		Description:   sc.Description,
		Image:         sc.Image,
		Prerequisites: sc.Prerequisites,
		Order:         sc.Order,
		IsActive:      sc.IsActive,
		CreatedAt:     sc.CreatedAt,
		UpdatedAt:     sc.UpdatedAt,
	}
}
