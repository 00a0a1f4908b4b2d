package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"academy/internal/catalog/models"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
)

// InMemoryStore keeps the catalog in process. Courses own their sub-courses
// directly, so removing a course removes its children in the same step.
type InMemoryStore struct {
	mu         sync.RWMutex
	courses    map[id.CourseID]*models.Course
	subCourses map[id.SubCourseID]id.CourseID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		courses:    make(map[id.CourseID]*models.Course),
		subCourses: make(map[id.SubCourseID]id.CourseID),
	}
}

// ListCourses returns every course with sub-courses, both in display order.
func (s *InMemoryStore) ListCourses(_ context.Context) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, models.CompareCourses)
	return out, nil
}

func (s *InMemoryStore) FindCourseByID(_ context.Context, courseID id.CourseID) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[courseID]
	if !ok {
		return nil, notFound("course")
	}
	return c.Clone(), nil
}

func (s *InMemoryStore) FindCourseBySlug(_ context.Context, slug id.Slug) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.Slug == slug {
			return c.Clone(), nil
		}
	}
	return nil, notFound("course")
}

// NextCourseOrder returns one past the highest course order.
func (s *InMemoryStore) NextCourseOrder(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	next := 0
	for _, c := range s.courses {
		next = max(next, c.Order+1)
	}
	return next, nil
}

func (s *InMemoryStore) CreateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.courses[course.ID]; exists {
		return fmt.Errorf("course %s: %w", course.ID, sentinel.ErrAlreadyUsed)
	}
	if s.courseSlugTakenLocked(course.Slug, course.ID) {
		return slugTaken(string(course.Slug))
	}
	stored := course.Clone()
	stored.SubCourses = []*models.SubCourse{}
	s.courses[course.ID] = stored
	return nil
}

// UpdateCourse replaces the course's own fields. Sub-courses are untouched.
func (s *InMemoryStore) UpdateCourse(_ context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.courses[course.ID]
	if !ok {
		return notFound("course")
	}
	if s.courseSlugTakenLocked(course.Slug, course.ID) {
		return slugTaken(string(course.Slug))
	}
	updated := course.Clone()
	updated.SubCourses = existing.SubCourses
	s.courses[course.ID] = updated
	return nil
}

// DeleteCourse removes the course and its sub-courses, returning how many
// sub-courses went with it.
func (s *InMemoryStore) DeleteCourse(_ context.Context, courseID id.CourseID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return 0, notFound("course")
	}
	for _, sc := range c.SubCourses {
		delete(s.subCourses, sc.ID)
	}
	delete(s.courses, courseID)
	return len(c.SubCourses), nil
}

// ReorderCourses assigns order i to ids[i]. Every id must exist; nothing is
// written otherwise.
func (s *InMemoryStore) ReorderCourses(_ context.Context, ids []id.CourseID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, courseID := range ids {
		if _, ok := s.courses[courseID]; !ok {
			return fmt.Errorf("course %s: %w", courseID, sentinel.ErrScopeMismatch)
		}
	}
	for i, courseID := range ids {
		c := s.courses[courseID]
		c.Order = i
		c.UpdatedAt = now
	}
	return nil
}

func (s *InMemoryStore) FindSubCourse(_ context.Context, subID id.SubCourseID) (*models.SubCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, _, ok := s.subCourseLocked(subID)
	if !ok {
		return nil, notFound("sub-course")
	}
	return sc.Clone(), nil
}

func (s *InMemoryStore) FindSubCourseBySlug(_ context.Context, courseID id.CourseID, slug id.Slug) (*models.SubCourse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[courseID]
	if !ok {
		return nil, notFound("course")
	}
	for _, sc := range c.SubCourses {
		if sc.Slug == slug {
			return sc.Clone(), nil
		}
	}
	return nil, notFound("sub-course")
}

// FindPlacements resolves sub-courses to themselves and their parent course.
// Parent courses are returned without nested sub-courses. Missing ids are
// absent from the result.
func (s *InMemoryStore) FindPlacements(_ context.Context, ids []id.SubCourseID) (map[id.SubCourseID]models.Placement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.SubCourseID]models.Placement, len(ids))
	for _, subID := range ids {
		sc, c, ok := s.subCourseLocked(subID)
		if !ok {
			continue
		}
		parent := c.Clone()
		parent.SubCourses = []*models.SubCourse{}
		out[subID] = models.Placement{Course: parent, SubCourse: sc.Clone()}
	}
	return out, nil
}

// SubCourseIDs lists the ids of the course's sub-courses in display order.
func (s *InMemoryStore) SubCourseIDs(_ context.Context, courseID id.CourseID) ([]id.SubCourseID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[courseID]
	if !ok {
		return nil, notFound("course")
	}
	out := make([]id.SubCourseID, len(c.SubCourses))
	for i, sc := range c.SubCourses {
		out[i] = sc.ID
	}
	return out, nil
}

// NextSubCourseOrder returns one past the highest order within the course.
func (s *InMemoryStore) NextSubCourseOrder(_ context.Context, courseID id.CourseID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[courseID]
	if !ok {
		return 0, notFound("course")
	}
	next := 0
	for _, sc := range c.SubCourses {
		next = max(next, sc.Order+1)
	}
	return next, nil
}

func (s *InMemoryStore) CreateSubCourse(_ context.Context, sc *models.SubCourse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[sc.CourseID]
	if !ok {
		return notFound("course")
	}
	if _, exists := s.subCourses[sc.ID]; exists {
		return fmt.Errorf("sub-course %s: %w", sc.ID, sentinel.ErrAlreadyUsed)
	}
	if subSlugTaken(c, sc.Slug, sc.ID) {
		return slugTaken(string(sc.Slug))
	}
	c.SubCourses = append(c.SubCourses, sc.Clone())
	slices.SortFunc(c.SubCourses, models.CompareSubCourses)
	s.subCourses[sc.ID] = c.ID
	return nil
}

// UpdateSubCourse replaces a sub-course in place. Moving a sub-course to a
// different course is not supported and reports ErrScopeMismatch.
func (s *InMemoryStore) UpdateSubCourse(_ context.Context, sc *models.SubCourse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c, ok := s.subCourseLocked(sc.ID)
	if !ok {
		return notFound("sub-course")
	}
	if c.ID != sc.CourseID {
		return fmt.Errorf("sub-course %s: %w", sc.ID, sentinel.ErrScopeMismatch)
	}
	if subSlugTaken(c, sc.Slug, sc.ID) {
		return slugTaken(string(sc.Slug))
	}
	idx := slices.IndexFunc(c.SubCourses, func(existing *models.SubCourse) bool { return existing.ID == sc.ID })
	c.SubCourses[idx] = sc.Clone()
	slices.SortFunc(c.SubCourses, models.CompareSubCourses)
	return nil
}

func (s *InMemoryStore) DeleteSubCourse(_ context.Context, subID id.SubCourseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, c, ok := s.subCourseLocked(subID)
	if !ok {
		return notFound("sub-course")
	}
	c.SubCourses = slices.DeleteFunc(c.SubCourses, func(sc *models.SubCourse) bool { return sc.ID == subID })
	delete(s.subCourses, subID)
	return nil
}

// ReorderSubCourses assigns order i to ids[i] within the course. Ids that do
// not belong to the course report ErrScopeMismatch and nothing is written.
func (s *InMemoryStore) ReorderSubCourses(_ context.Context, courseID id.CourseID, ids []id.SubCourseID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courses[courseID]
	if !ok {
		return notFound("course")
	}
	for _, subID := range ids {
		if owner, ok := s.subCourses[subID]; !ok || owner != courseID {
			return fmt.Errorf("sub-course %s: %w", subID, sentinel.ErrScopeMismatch)
		}
	}
	position := make(map[id.SubCourseID]int, len(ids))
	for i, subID := range ids {
		position[subID] = i
	}
	for _, sc := range c.SubCourses {
		if i, ok := position[sc.ID]; ok {
			sc.Order = i
			sc.UpdatedAt = now
		}
	}
	slices.SortFunc(c.SubCourses, models.CompareSubCourses)
	return nil
}

func (s *InMemoryStore) courseSlugTakenLocked(slug id.Slug, self id.CourseID) bool {
	for _, c := range s.courses {
		if c.Slug == slug && c.ID != self {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) subCourseLocked(subID id.SubCourseID) (*models.SubCourse, *models.Course, bool) {
	courseID, ok := s.subCourses[subID]
	if !ok {
		return nil, nil, false
	}
	c := s.courses[courseID]
	for _, sc := range c.SubCourses {
		if sc.ID == subID {
			return sc, c, true
		}
	}
	return nil, nil, false
}

func subSlugTaken(c *models.Course, slug id.Slug, self id.SubCourseID) bool {
	for _, sc := range c.SubCourses {
		if sc.Slug == slug && sc.ID != self {
			return true
		}
	}
	return false
}
