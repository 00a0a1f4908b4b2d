package models

import (
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	pstrings "academy/pkg/platform/strings"
	"academy/pkg/platform/validation"
)

// CreateCourseRequest creates a course. Slug is derived from the title when omitted.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Slug        string `json:"slug" validate:"max=160"`
	Description string `json:"description" validate:"max=10000"`
	Image       string `json:"image" validate:"required,max=2048"`
	Order       *int   `json:"order" validate:"omitempty,gte=0"`
	IsActive    *bool  `json:"is_active"`
}

// Validate checks fields and resolves the slug in place.
func (r *CreateCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	slug, slugErr := resolveSlug(r.Slug, r.Title)
	if err := validation.Merge(validation.Struct(r), slugErr); err != nil {
		return err
	}
	r.Slug = string(slug)
	return nil
}

// UpdateCourseRequest patches a course; nil fields are left unchanged.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,max=160"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Image       *string `json:"image" validate:"omitempty,max=2048"`
	Order       *int    `json:"order" validate:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdateCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	errs := []error{validation.Struct(r)}
	if r.Title != nil && *r.Title == "" {
		errs = append(errs, dErrors.Validation("title", "cannot be blank"))
	}
	if r.Image != nil && *r.Image == "" {
		errs = append(errs, dErrors.Validation("image", "cannot be blank"))
	}
	if r.Slug != nil {
		if _, err := id.ParseSlug(*r.Slug); err != nil {
			errs = append(errs, dErrors.Validation("slug", slugMessage(err)))
		}
	}
	return validation.Merge(errs...)
}

// CreateSubCourseRequest creates a sub-course under the course in the path.
type CreateSubCourseRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Slug          string   `json:"slug" validate:"max=160"`
	Description   string   `json:"description" validate:"max=10000"`
	Image         string   `json:"image" validate:"max=2048"`
	Prerequisites []string `json:"prerequisites" validate:"max=50,dive,max=500"`
	Order         *int     `json:"order" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"is_active"`
}

func (r *CreateSubCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	slug, slugErr := resolveSlug(r.Slug, r.Title)
	if err := validation.Merge(validation.Struct(r), slugErr); err != nil {
		return err
	}
	r.Slug = string(slug)
	r.Prerequisites = pstrings.TrimAll(r.Prerequisites)
	return nil
}

type UpdateSubCourseRequest struct {
	Title         *string   `json:"title" validate:"omitempty,max=255"`
	Slug          *string   `json:"slug" validate:"omitempty,max=160"`
	Description   *string   `json:"description" validate:"omitempty,max=10000"`
	Image         *string   `json:"image" validate:"omitempty,max=2048"`
	Prerequisites *[]string `json:"prerequisites" validate:"omitempty,max=50,dive,max=500"`
	Order         *int      `json:"order" validate:"omitempty,gte=0"`
	IsActive      *bool     `json:"is_active"`
}

func (r *UpdateSubCourseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	errs := []error{validation.Struct(r)}
	if r.Title != nil && *r.Title == "" {
		errs = append(errs, dErrors.Validation("title", "cannot be blank"))
	}
	if r.Slug != nil {
		if _, err := id.ParseSlug(*r.Slug); err != nil {
			errs = append(errs, dErrors.Validation("slug", slugMessage(err)))
		}
	}
	if err := validation.Merge(errs...); err != nil {
		return err
	}
	if r.Prerequisites != nil {
		trimmed := pstrings.TrimAll(*r.Prerequisites)
		r.Prerequisites = &trimmed
	}
	return nil
}

// ReorderRequest lists ids in their new display order.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=1000,unique,dive,uuid"`
}

func (r *ReorderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return validation.Struct(r)
}

// CourseIDs parses the validated ids.
func (r *ReorderRequest) CourseIDs() ([]id.CourseID, error) {
	out := make([]id.CourseID, len(r.IDs))
	for i, raw := range r.IDs {
		courseID, err := id.ParseCourseID(raw)
		if err != nil {
			return nil, dErrors.Validation("ids", "must be valid UUIDs")
		}
		out[i] = courseID
	}
	return out, nil
}

// SubCourseIDs parses the validated ids.
func (r *ReorderRequest) SubCourseIDs() ([]id.SubCourseID, error) {
	out := make([]id.SubCourseID, len(r.IDs))
	for i, raw := range r.IDs {
		subID, err := id.ParseSubCourseID(raw)
		if err != nil {
			return nil, dErrors.Validation("ids", "must be valid UUIDs")
		}
		out[i] = subID
	}
	return out, nil
}

func resolveSlug(raw, title string) (id.Slug, error) {
	if raw == "" {
		derived := id.Slugify(title)
		if derived == "" {
			if title == "" {
				return "", nil
			}
			return "", dErrors.Validation("slug", "could not be derived from title; provide one")
		}
		return derived, nil
	}
	slug, err := id.ParseSlug(raw)
	if err != nil {
		return "", dErrors.Validation("slug", slugMessage(err))
	}
	return slug, nil
}

func slugMessage(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return "is invalid"
}
