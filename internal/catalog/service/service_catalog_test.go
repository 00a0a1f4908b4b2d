package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"academy/internal/catalog/models"
	"academy/internal/catalog/query"
	"academy/internal/catalog/service"
	"academy/internal/catalog/store"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/tx"
	"academy/pkg/requestcontext"
)

// recordingPurger stands in for the certificate registry.
type recordingPurger struct {
	mu     sync.Mutex
	purged []id.SubCourseID
}

func (p *recordingPurger) DeleteBySubCourses(_ context.Context, ids []id.SubCourseID) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.purged = append(p.purged, ids...)
	return len(ids), nil
}

type CatalogSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	purger  *recordingPurger
	service *service.Service
	ctx     context.Context
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.store = store.New()
	s.purger = &recordingPurger{}
	s.service = service.New(s.store,
		service.WithTxRunner(tx.NewLockRunner()),
		service.WithCertificatePurger(s.purger),
	)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
}

func ptr[T any](v T) *T { return &v }

func (s *CatalogSuite) createCourse(title string, active bool) *models.Course {
	c, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: title, Image: "img.png", IsActive: ptr(active)})
	s.Require().NoError(err)
	return c
}

func (s *CatalogSuite) createSub(courseID id.CourseID, title string, active bool) *models.SubCourse {
	sc, err := s.service.CreateSubCourse(s.ctx, courseID, &models.CreateSubCourseRequest{Title: title, IsActive: ptr(active)})
	s.Require().NoError(err)
	return sc
}

func (s *CatalogSuite) TestPublicListingHidesInactiveTransitively() {
	engines := s.createCourse("Engines", true)
	s.createSub(engines.ID, "Engine Basics", true)
	s.createSub(engines.ID, "Draft Module", false)
	hidden := s.createCourse("Hidden", false)
	s.createSub(hidden.ID, "Still Flagged Active", true)

	page, err := s.service.ListCourses(s.ctx, service.ListFilter{ActiveOnly: true}, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Engines", page.Items[0].Title)
	s.Require().Len(page.Items[0].SubCourses, 1)
	s.Equal("Engine Basics", page.Items[0].SubCourses[0].Title)

	_, err = s.service.PublicCourse(s.ctx, "hidden")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, _, err = s.service.PublicSubCourse(s.ctx, "hidden", "still-flagged-active")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	admin, err := s.service.ListCourses(s.ctx, service.ListFilter{}, 1, 0)
	s.Require().NoError(err)
	s.Len(admin.Items, 2)
}

func (s *CatalogSuite) TestToggleDoesNotTouchChildren() {
	c := s.createCourse("Engines", true)
	sc := s.createSub(c.ID, "Engine Basics", true)

	toggled, err := s.service.ToggleCourseActive(s.ctx, c.ID)
	s.Require().NoError(err)
	s.False(toggled.IsActive)

	child, err := s.service.GetSubCourse(s.ctx, c.ID, sc.ID)
	s.Require().NoError(err)
	s.True(child.IsActive)

	_, err = s.service.ToggleCourseActive(s.ctx, c.ID)
	s.Require().NoError(err)
	public, err := s.service.PublicCourse(s.ctx, "engines")
	s.Require().NoError(err)
	s.Len(public.SubCourses, 1)
}

func (s *CatalogSuite) TestSearchMatchesTitleOnly() {
	s.createCourse("Engines", true)
	c, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: "Welding", Description: "engine mounts", Image: "x.png"})
	s.Require().NoError(err)
	s.NotNil(c)

	page, err := s.service.ListCourses(s.ctx, service.ListFilter{Search: "ENGINE"}, 1, 9)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Engines", page.Items[0].Title)
}

func (s *CatalogSuite) TestListIsStableAndPaginated() {
	for _, title := range []string{"A1", "A2", "A3", "A4", "A5"} {
		s.createCourse(title, true)
	}
	first, err := s.service.ListCourses(s.ctx, service.ListFilter{}, 1, 2)
	s.Require().NoError(err)
	s.Equal(3, first.TotalPages)
	s.Equal("A1", first.Items[0].Title)

	last, err := s.service.ListCourses(s.ctx, service.ListFilter{}, 99, 2)
	s.Require().NoError(err)
	s.Equal(3, last.CurrentPage)
	s.Equal([]string{"A5"}, titles(last))
}

func titles(p query.Page[*models.Course]) []string {
	out := make([]string, len(p.Items))
	for i, c := range p.Items {
		out[i] = c.Title
	}
	return out
}

func (s *CatalogSuite) TestSubCourseSlugScoping() {
	engines := s.createCourse("Engines", true)
	avionics := s.createCourse("Avionics", true)
	basics := s.createSub(engines.ID, "Basics", true)

	s.Run("by slug under the wrong course is not found", func() {
		_, _, err := s.service.GetSubCourseBySlug(s.ctx, "avionics", "basics")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("by id under the wrong course is an invalid scope", func() {
		_, err := s.service.GetSubCourse(s.ctx, avionics.ID, basics.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidScope))
	})

	s.Run("the same slug is free under another course", func() {
		s.createSub(avionics.ID, "Basics", true)
	})

	s.Run("duplicate within a course", func() {
		_, err := s.service.CreateSubCourse(s.ctx, engines.ID, &models.CreateSubCourseRequest{Title: "Basics"})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateSlug))
	})
}

func (s *CatalogSuite) TestDeleteCourseCascadesExactly() {
	doomed := s.createCourse("Doomed", true)
	var doomedSubs []id.SubCourseID
	for _, title := range []string{"One", "Two", "Three"} {
		doomedSubs = append(doomedSubs, s.createSub(doomed.ID, title, true).ID)
	}
	kept := s.createCourse("Kept", true)
	keptSub := s.createSub(kept.ID, "Survivor", true)

	s.Require().NoError(s.service.DeleteCourse(s.ctx, doomed.ID))

	s.ElementsMatch(doomedSubs, s.purger.purged)
	for _, subID := range doomedSubs {
		_, err := s.service.ResolveSubCourse(s.ctx, subID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	}
	placement, err := s.service.ResolveSubCourse(s.ctx, keptSub.ID)
	s.Require().NoError(err)
	s.Equal("Kept", placement.Course.Title)
}

func (s *CatalogSuite) TestReorderSubCoursesRejectsForeignIDs() {
	a := s.createCourse("A", true)
	b := s.createCourse("B", true)
	x := s.createSub(a.ID, "X", true)
	y := s.createSub(a.ID, "Y", true)
	z := s.createSub(b.ID, "Z", true)

	err := s.service.ReorderSubCourses(s.ctx, a.ID, []id.SubCourseID{y.ID, z.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidScope))

	course, err := s.service.GetCourseByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal([]id.SubCourseID{x.ID, y.ID}, []id.SubCourseID{course.SubCourses[0].ID, course.SubCourses[1].ID})

	s.Require().NoError(s.service.ReorderSubCourses(s.ctx, a.ID, []id.SubCourseID{y.ID, x.ID}))
	course, err = s.service.GetCourseByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(y.ID, course.SubCourses[0].ID)
	s.Equal(0, course.SubCourses[0].Order)
	s.Equal(1, course.SubCourses[1].Order)
}

func (s *CatalogSuite) TestUpdateCourse() {
	c := s.createCourse("Engines", true)
	s.createCourse("Avionics", true)

	s.Run("rename keeps slug", func() {
		updated, err := s.service.UpdateCourse(s.ctx, c.ID, &models.UpdateCourseRequest{Title: ptr("Jet Engines")})
		s.Require().NoError(err)
		s.Equal("Jet Engines", updated.Title)
		s.Equal(id.Slug("engines"), updated.Slug)
	})

	s.Run("slug collision", func() {
		_, err := s.service.UpdateCourse(s.ctx, c.ID, &models.UpdateCourseRequest{Slug: ptr("avionics")})
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateSlug))
	})

	s.Run("invalid slug", func() {
		_, err := s.service.UpdateCourse(s.ctx, c.ID, &models.UpdateCourseRequest{Slug: ptr("Not A Slug")})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("blank image", func() {
		_, err := s.service.UpdateCourse(s.ctx, c.ID, &models.UpdateCourseRequest{Image: ptr("")})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CatalogSuite) TestDeleteSubCoursePurgesOnlyItsCertificates() {
	c := s.createCourse("Engines", true)
	x := s.createSub(c.ID, "X", true)
	s.createSub(c.ID, "Y", true)

	s.Require().NoError(s.service.DeleteSubCourse(s.ctx, c.ID, x.ID))
	s.Equal([]id.SubCourseID{x.ID}, s.purger.purged)

	course, err := s.service.GetCourseByID(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Len(course.SubCourses, 1)
}
