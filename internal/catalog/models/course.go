package models

import (
	"slices"
	"strings"
	"time"

	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
	MaxImageLength       = 2048
	MaxPrerequisites     = 50
)

// Course is a top-level catalog entry that owns an ordered set of sub-courses.
//
// Invariants:
//   - Title is non-empty and at most 255 characters
//   - Slug is URL-safe and unique across all courses
//   - Image is a non-empty reference (URL or storage path, not validated further)
//   - Order is non-negative; ties are broken by ID
//
// Visibility cascades: an inactive course hides its sub-courses from public
// reads even when the sub-courses are themselves flagged active. The flags are
// independent so reactivating a course restores its previous children.
type Course struct {
	ID          id.CourseID  `json:"id"`
	Title       string       `json:"title"`
	Slug        id.Slug      `json:"slug"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	SubCourses  []*SubCourse `json:"sub_courses"`
}

// SubCourse is a module exclusively owned by one course. Its slug is unique
// within the parent course only.
type SubCourse struct {
	ID            id.SubCourseID `json:"id"`
	CourseID      id.CourseID    `json:"course_id"`
	Title         string         `json:"title"`
	Slug          id.Slug        `json:"slug"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	Prerequisites []string       `json:"prerequisites"`
	Order         int            `json:"order"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Placement locates a sub-course inside its course.
type Placement struct {
	Course    *Course
	SubCourse *SubCourse
}

func NewCourse(courseID id.CourseID, title string, slug id.Slug, description, image string, order int, active bool, now time.Time) (*Course, error) {
	c := &Course{
		ID:          courseID,
		Title:       title,
		Slug:        slug,
		Description: description,
		Image:       image,
		Order:       order,
		IsActive:    active,
		CreatedAt:   now,
		UpdatedAt:   now,
		SubCourses:  []*SubCourse{},
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// Check re-validates invariants after mutation.
func (c *Course) Check() error {
	if err := checkCommon(c.Title, c.Slug, c.Description, c.Image, c.Order); err != nil {
		return err
	}
	if strings.TrimSpace(c.Image) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "course image cannot be empty")
	}
	return nil
}

func NewSubCourse(subID id.SubCourseID, courseID id.CourseID, title string, slug id.Slug, description, image string, prerequisites []string, order int, active bool, now time.Time) (*SubCourse, error) {
	if prerequisites == nil {
		prerequisites = []string{}
	}
	sc := &SubCourse{
		ID:            subID,
		CourseID:      courseID,
		Title:         title,
		Slug:          slug,
		Description:   description,
		Image:         image,
		Prerequisites: prerequisites,
		Order:         order,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := sc.Check(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *SubCourse) Check() error {
	if sc.CourseID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "sub-course must belong to a course")
	}
	if len(sc.Prerequisites) > MaxPrerequisites {
		return dErrors.New(dErrors.CodeInvariantViolation, "too many prerequisites")
	}
	return checkCommon(sc.Title, sc.Slug, sc.Description, sc.Image, sc.Order)
}

func checkCommon(title string, slug id.Slug, description, image string, order int) error {
	switch {
	case strings.TrimSpace(title) == "":
		return dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	case len(title) > MaxTitleLength:
		return dErrors.New(dErrors.CodeInvariantViolation, "title must be 255 characters or less")
	case len(description) > MaxDescriptionLength:
		return dErrors.New(dErrors.CodeInvariantViolation, "description is too long")
	case len(image) > MaxImageLength:
		return dErrors.New(dErrors.CodeInvariantViolation, "image reference is too long")
	case order < 0:
		return dErrors.New(dErrors.CodeInvariantViolation, "order must be non-negative")
	}
	if _, err := id.ParseSlug(string(slug)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "invalid slug")
	}
	return nil
}

// Clone returns a deep copy, including sub-courses.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.SubCourses = make([]*SubCourse, len(c.SubCourses))
	for i, sc := range c.SubCourses {
		out.SubCourses[i] = sc.Clone()
	}
	return &out
}

func (sc *SubCourse) Clone() *SubCourse {
	if sc == nil {
		return nil
	}
	out := *sc
	out.Prerequisites = slices.Clone(sc.Prerequisites)
	if out.Prerequisites == nil {
		out.Prerequisites = []string{}
	}
	return &out
}

// PublicView returns a copy holding only active sub-courses.
func (c *Course) PublicView() *Course {
	out := c.Clone()
	out.SubCourses = slices.DeleteFunc(out.SubCourses, func(sc *SubCourse) bool { return !sc.IsActive })
	return out
}

// FilterText implements query.Filterable.
func (c *Course) FilterText() []string {
	return []string{c.Title, c.Description}
}

// FilterCategory implements query.Filterable. Courses carry no category, so
// any non-empty category filter excludes them.
func (c *Course) FilterCategory() string {
	return ""
}

// CompareCourses orders by display order, then ID.
func CompareCourses(a, b *Course) int {
	if a.Order != b.Order {
		return a.Order - b.Order
	}
	return a.ID.Compare(b.ID)
}

// CompareSubCourses orders by display order, then ID.
func CompareSubCourses(a, b *SubCourse) int {
	if a.Order != b.Order {
		return a.Order - b.Order
	}
	return a.ID.Compare(b.ID)
}

func (sc *SubCourse) FilterText() []string {
	return []string{sc.Title, sc.Description}
}

func (sc *SubCourse) FilterCategory() string {
	return ""
}
