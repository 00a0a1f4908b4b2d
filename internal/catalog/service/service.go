// Package service implements catalog management and the public catalog reads.
//
// Every write runs inside the configured tx.Runner so multi-step operations
// (cascading deletes, reorders) are all-or-nothing. Public reads hide inactive
// entries transitively: an inactive course hides all of its sub-courses.
package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"academy/internal/catalog/metrics"
	"academy/internal/catalog/models"
	"academy/internal/catalog/query"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/platform/tx"
	"academy/pkg/requestcontext"
)

type Store interface {
	ListCourses(ctx context.Context) ([]*models.Course, error)
	FindCourseByID(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	FindCourseBySlug(ctx context.Context, slug id.Slug) (*models.Course, error)
	NextCourseOrder(ctx context.Context) (int, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	UpdateCourse(ctx context.Context, course *models.Course) error
	DeleteCourse(ctx context.Context, courseID id.CourseID) (int, error)
	ReorderCourses(ctx context.Context, ids []id.CourseID, now time.Time) error

	FindSubCourse(ctx context.Context, subID id.SubCourseID) (*models.SubCourse, error)
	FindSubCourseBySlug(ctx context.Context, courseID id.CourseID, slug id.Slug) (*models.SubCourse, error)
	FindPlacements(ctx context.Context, ids []id.SubCourseID) (map[id.SubCourseID]models.Placement, error)
	SubCourseIDs(ctx context.Context, courseID id.CourseID) ([]id.SubCourseID, error)
	NextSubCourseOrder(ctx context.Context, courseID id.CourseID) (int, error)
	CreateSubCourse(ctx context.Context, sc *models.SubCourse) error
	UpdateSubCourse(ctx context.Context, sc *models.SubCourse) error
	DeleteSubCourse(ctx context.Context, subID id.SubCourseID) error
	ReorderSubCourses(ctx context.Context, courseID id.CourseID, ids []id.SubCourseID, now time.Time) error
}

// CertificatePurger removes certificates issued for sub-courses that are
// being deleted, retiring their codes.
type CertificatePurger interface {
	DeleteBySubCourses(ctx context.Context, ids []id.SubCourseID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store          Store
	tx             tx.Runner
	purger         CertificatePurger
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTxRunner sets the unit-of-work runner. It must be shared with the
// certificate service so cascades and issuance serialise against each other.
func WithTxRunner(runner tx.Runner) Option {
	return func(s *Service) {
		s.tx = runner
	}
}

func WithCertificatePurger(p CertificatePurger) Option {
	return func(s *Service) {
		s.purger = p
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewLockRunner()
	}
	return s
}

// ListFilter narrows ListCourses. Search matches course titles.
type ListFilter struct {
	Search     string
	ActiveOnly bool
}

// ListCourses returns a page of courses ordered by display order, then id.
// With ActiveOnly, inactive courses are excluded and only active sub-courses
// are nested.
func (s *Service) ListCourses(ctx context.Context, filter ListFilter, page, pageSize int) (query.Page[*models.Course], error) {
	start := time.Now()
	defer s.observeList(start)

	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return query.Page[*models.Course]{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list courses")
	}
	search := strings.TrimSpace(filter.Search)
	matched := make([]*models.Course, 0, len(courses))
	for _, c := range courses {
		if filter.ActiveOnly {
			if !c.IsActive {
				continue
			}
			c = c.PublicView()
		}
		if !query.ContainsFold([]string{c.Title}, search) {
			continue
		}
		matched = append(matched, c)
	}
	return query.Paginate(matched, page, query.ClampPageSize(pageSize)), nil
}

func (s *Service) GetCourseByID(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	c, err := s.store.FindCourseByID(ctx, courseID)
	if err != nil {
		return nil, translate(err, "course", "load course")
	}
	return c, nil
}

func (s *Service) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	c, err := s.store.FindCourseBySlug(ctx, id.Slug(slug))
	if err != nil {
		return nil, translate(err, "course", "load course")
	}
	return c, nil
}

// PublicCourse returns an active course with its active sub-courses.
// Inactive courses are reported as not found.
func (s *Service) PublicCourse(ctx context.Context, slug string) (*models.Course, error) {
	c, err := s.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, dErrors.New(dErrors.CodeNotFound, "course not found")
	}
	return c.PublicView(), nil
}

// GetSubCourseBySlug resolves a sub-course through its course slug. A
// sub-course slug that only exists under another course is not found.
func (s *Service) GetSubCourseBySlug(ctx context.Context, courseSlug, subSlug string) (*models.Course, *models.SubCourse, error) {
	c, err := s.GetCourseBySlug(ctx, courseSlug)
	if err != nil {
		return nil, nil, err
	}
	sc, err := s.store.FindSubCourseBySlug(ctx, c.ID, id.Slug(subSlug))
	if err != nil {
		return nil, nil, translate(err, "sub-course", "load sub-course")
	}
	return c, sc, nil
}

// PublicSubCourse is GetSubCourseBySlug restricted to an active sub-course
// under an active course.
func (s *Service) PublicSubCourse(ctx context.Context, courseSlug, subSlug string) (*models.Course, *models.SubCourse, error) {
	c, sc, err := s.GetSubCourseBySlug(ctx, courseSlug, subSlug)
	if err != nil {
		return nil, nil, err
	}
	if !c.IsActive || !sc.IsActive {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "sub-course not found")
	}
	return c.PublicView(), sc, nil
}

// GetSubCourse loads a sub-course by id within a course. A sub-course that
// exists under a different course is an invalid scope, not a miss.
func (s *Service) GetSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) (*models.SubCourse, error) {
	if _, err := s.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	sc, err := s.store.FindSubCourse(ctx, subID)
	if err != nil {
		return nil, translate(err, "sub-course", "load sub-course")
	}
	if sc.CourseID != courseID {
		return nil, dErrors.New(dErrors.CodeInvalidScope, "sub-course does not belong to this course")
	}
	return sc, nil
}

// ListSubCourses pages through a course's sub-courses for administration.
func (s *Service) ListSubCourses(ctx context.Context, courseID id.CourseID, filter query.Filter, page, pageSize int) (*models.Course, query.Page[*models.SubCourse], error) {
	c, err := s.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, query.Page[*models.SubCourse]{}, err
	}
	matched := query.Apply(c.SubCourses, filter)
	return c, query.Paginate(matched, page, query.ClampPageSize(pageSize)), nil
}

// ResolveSubCourse returns a sub-course and its parent course.
func (s *Service) ResolveSubCourse(ctx context.Context, subID id.SubCourseID) (models.Placement, error) {
	placements, err := s.ResolvePlacements(ctx, []id.SubCourseID{subID})
	if err != nil {
		return models.Placement{}, err
	}
	p, ok := placements[subID]
	if !ok {
		return models.Placement{}, dErrors.New(dErrors.CodeNotFound, "sub-course not found")
	}
	return p, nil
}

// ResolvePlacements batch-resolves sub-courses. Unknown ids are omitted.
func (s *Service) ResolvePlacements(ctx context.Context, ids []id.SubCourseID) (map[id.SubCourseID]models.Placement, error) {
	placements, err := s.store.FindPlacements(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve sub-courses")
	}
	return placements, nil
}

func (s *Service) CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var created *models.Course
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.orderOrNext(ctx, req.Order, s.store.NextCourseOrder)
		if err != nil {
			return err
		}
		c, err := models.NewCourse(id.NewCourseID(), req.Title, id.Slug(req.Slug), req.Description, req.Image, order, boolOr(req.IsActive, true), now)
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.CreateCourse(ctx, c); err != nil {
			return translate(err, "course", "create course")
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "create course")
	}
	s.logAudit(ctx, audit.EventCourseCreated, created.ID.String(), map[string]string{"slug": string(created.Slug)})
	s.incrementMutation("course", "create")
	return created, nil
}

func (s *Service) UpdateCourse(ctx context.Context, courseID id.CourseID, req *models.UpdateCourseRequest) (*models.Course, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var updated *models.Course
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.store.FindCourseByID(ctx, courseID)
		if err != nil {
			return translate(err, "course", "load course")
		}
		applyCourseUpdate(c, req)
		c.UpdatedAt = now
		if err := c.Check(); err != nil {
			return asValidation(err)
		}
		if err := s.store.UpdateCourse(ctx, c); err != nil {
			return translate(err, "course", "update course")
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "update course")
	}
	s.logAudit(ctx, audit.EventCourseUpdated, courseID.String(), nil)
	s.incrementMutation("course", "update")
	return updated, nil
}

// DeleteCourse removes a course, its sub-courses and every certificate
// issued for them as one unit.
func (s *Service) DeleteCourse(ctx context.Context, courseID id.CourseID) error {
	var removedSubs, removedCerts int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		subIDs, err := s.store.SubCourseIDs(ctx, courseID)
		if err != nil {
			return translate(err, "course", "load course")
		}
		if removedCerts, err = s.purge(ctx, subIDs); err != nil {
			return err
		}
		if removedSubs, err = s.store.DeleteCourse(ctx, courseID); err != nil {
			return translate(err, "course", "delete course")
		}
		return nil
	})
	if err != nil {
		return internalUnlessCoded(err, "delete course")
	}
	s.logAudit(ctx, audit.EventCourseDeleted, courseID.String(), map[string]string{
		"sub_courses_removed":  itoa(removedSubs),
		"certificates_removed": itoa(removedCerts),
	})
	s.incrementMutation("course", "delete")
	if s.metrics != nil {
		s.metrics.AddCascadeDeleted("sub_course", removedSubs)
		s.metrics.AddCascadeDeleted("certificate", removedCerts)
	}
	return nil
}

// ToggleCourseActive flips the course flag. Sub-course flags are unchanged.
func (s *Service) ToggleCourseActive(ctx context.Context, courseID id.CourseID) (*models.Course, error) {
	now := requestcontext.Now(ctx)
	var toggled *models.Course
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.store.FindCourseByID(ctx, courseID)
		if err != nil {
			return translate(err, "course", "load course")
		}
		c.IsActive = !c.IsActive
		c.UpdatedAt = now
		if err := s.store.UpdateCourse(ctx, c); err != nil {
			return translate(err, "course", "update course")
		}
		toggled = c
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "toggle course")
	}
	s.logAudit(ctx, audit.EventCourseToggled, courseID.String(), map[string]string{"is_active": boolString(toggled.IsActive)})
	s.incrementMutation("course", "toggle")
	return toggled, nil
}

// ReorderCourses assigns order i to ids[i]. Any id that is not a course
// rejects the whole request.
func (s *Service) ReorderCourses(ctx context.Context, ids []id.CourseID) error {
	if err := checkReorder(ids); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.ReorderCourses(ctx, ids, now); err != nil {
			return s.translateReorder(err, "course")
		}
		return nil
	})
	if err != nil {
		return internalUnlessCoded(err, "reorder courses")
	}
	s.logAudit(ctx, audit.EventCoursesReordered, "", map[string]string{"count": itoa(len(ids))})
	s.incrementMutation("course", "reorder")
	return nil
}

func (s *Service) CreateSubCourse(ctx context.Context, courseID id.CourseID, req *models.CreateSubCourseRequest) (*models.SubCourse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var created *models.SubCourse
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		nextOrder := func(ctx context.Context) (int, error) { return s.store.NextSubCourseOrder(ctx, courseID) }
		order, err := s.orderOrNext(ctx, req.Order, nextOrder)
		if err != nil {
			return translate(err, "course", "load course")
		}
		sc, err := models.NewSubCourse(id.NewSubCourseID(), courseID, req.Title, id.Slug(req.Slug), req.Description, req.Image,
			req.Prerequisites, order, boolOr(req.IsActive, true), now)
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.CreateSubCourse(ctx, sc); err != nil {
			return translate(err, "course", "create sub-course")
		}
		created = sc
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "create sub-course")
	}
	s.logAudit(ctx, audit.EventSubCourseCreated, created.ID.String(), map[string]string{
		"course_id": courseID.String(),
		"slug":      string(created.Slug),
	})
	s.incrementMutation("sub_course", "create")
	return created, nil
}

func (s *Service) UpdateSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID, req *models.UpdateSubCourseRequest) (*models.SubCourse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	var updated *models.SubCourse
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sc, err := s.GetSubCourse(ctx, courseID, subID)
		if err != nil {
			return err
		}
		applySubCourseUpdate(sc, req)
		sc.UpdatedAt = now
		if err := sc.Check(); err != nil {
			return asValidation(err)
		}
		if err := s.store.UpdateSubCourse(ctx, sc); err != nil {
			return translate(err, "sub-course", "update sub-course")
		}
		updated = sc
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "update sub-course")
	}
	s.logAudit(ctx, audit.EventSubCourseUpdated, subID.String(), map[string]string{"course_id": courseID.String()})
	s.incrementMutation("sub_course", "update")
	return updated, nil
}

// DeleteSubCourse removes a sub-course and its certificates as one unit.
func (s *Service) DeleteSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) error {
	var removedCerts int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.GetSubCourse(ctx, courseID, subID); err != nil {
			return err
		}
		var err error
		if removedCerts, err = s.purge(ctx, []id.SubCourseID{subID}); err != nil {
			return err
		}
		if err := s.store.DeleteSubCourse(ctx, subID); err != nil {
			return translate(err, "sub-course", "delete sub-course")
		}
		return nil
	})
	if err != nil {
		return internalUnlessCoded(err, "delete sub-course")
	}
	s.logAudit(ctx, audit.EventSubCourseDeleted, subID.String(), map[string]string{
		"course_id":            courseID.String(),
		"certificates_removed": itoa(removedCerts),
	})
	s.incrementMutation("sub_course", "delete")
	if s.metrics != nil {
		s.metrics.AddCascadeDeleted("certificate", removedCerts)
	}
	return nil
}

func (s *Service) ToggleSubCourseActive(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) (*models.SubCourse, error) {
	now := requestcontext.Now(ctx)
	var toggled *models.SubCourse
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sc, err := s.GetSubCourse(ctx, courseID, subID)
		if err != nil {
			return err
		}
		sc.IsActive = !sc.IsActive
		sc.UpdatedAt = now
		if err := s.store.UpdateSubCourse(ctx, sc); err != nil {
			return translate(err, "sub-course", "update sub-course")
		}
		toggled = sc
		return nil
	})
	if err != nil {
		return nil, internalUnlessCoded(err, "toggle sub-course")
	}
	s.logAudit(ctx, audit.EventSubCourseToggled, subID.String(), map[string]string{
		"course_id": courseID.String(),
		"is_active": boolString(toggled.IsActive),
	})
	s.incrementMutation("sub_course", "toggle")
	return toggled, nil
}

// ReorderSubCourses assigns order i to ids[i] within the course. Ids from
// another course, or unknown ids, reject the whole request.
func (s *Service) ReorderSubCourses(ctx context.Context, courseID id.CourseID, ids []id.SubCourseID) error {
	if err := checkReorder(ids); err != nil {
		return err
	}
	now := requestcontext.Now(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.ReorderSubCourses(ctx, courseID, ids, now); err != nil {
			return s.translateReorder(err, "sub-course")
		}
		return nil
	})
	if err != nil {
		return internalUnlessCoded(err, "reorder sub-courses")
	}
	s.logAudit(ctx, audit.EventSubCoursesReordered, courseID.String(), map[string]string{"count": itoa(len(ids))})
	s.incrementMutation("sub_course", "reorder")
	return nil
}

func (s *Service) purge(ctx context.Context, subIDs []id.SubCourseID) (int, error) {
	if s.purger == nil || len(subIDs) == 0 {
		return 0, nil
	}
	n, err := s.purger.DeleteBySubCourses(ctx, subIDs)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete certificates")
	}
	return n, nil
}

func (s *Service) orderOrNext(ctx context.Context, requested *int, next func(context.Context) (int, error)) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	return next(ctx)
}

func (s *Service) translateReorder(err error, kind string) error {
	if errors.Is(err, sentinel.ErrScopeMismatch) {
		if s.metrics != nil {
			s.metrics.IncrementReorderRejected()
		}
		return dErrors.New(dErrors.CodeInvalidScope, "ids must all be "+kind+"s of the target scope")
	}
	return translate(err, "course", "reorder")
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, attributes map[string]string) {
	if s.logger != nil {
		args := []any{"event", string(event), "log_type", "audit"}
		if subject != "" {
			args = append(args, "subject", subject)
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		for k, v := range attributes {
			args = append(args, k, v)
		}
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:     string(event),
		Subject:    subject,
		Attributes: attributes,
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) incrementMutation(entity, operation string) {
	if s.metrics != nil {
		s.metrics.IncrementMutation(entity, operation)
	}
}

func (s *Service) observeList(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveList(start)
	}
}

func applyCourseUpdate(c *models.Course, req *models.UpdateCourseRequest) {
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Slug != nil {
		c.Slug = id.Slug(*req.Slug)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Image != nil {
		c.Image = *req.Image
	}
	if req.Order != nil {
		c.Order = *req.Order
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
}

func applySubCourseUpdate(sc *models.SubCourse, req *models.UpdateSubCourseRequest) {
	if req.Title != nil {
		sc.Title = *req.Title
	}
	if req.Slug != nil {
		sc.Slug = id.Slug(*req.Slug)
	}
	if req.Description != nil {
		sc.Description = *req.Description
	}
	if req.Image != nil {
		sc.Image = *req.Image
	}
	if req.Prerequisites != nil {
		sc.Prerequisites = slices.Clone(*req.Prerequisites)
	}
	if req.Order != nil {
		sc.Order = *req.Order
	}
	if req.IsActive != nil {
		sc.IsActive = *req.IsActive
	}
}
