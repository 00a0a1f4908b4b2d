package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,CertificatePurger,AuditPublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"academy/internal/catalog/models"
	"academy/internal/catalog/service/mocks"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/audit"
	"academy/pkg/platform/sentinel"
	"academy/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	purger    *mocks.MockCertificatePurger
	publisher *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockStore(s.ctrl)
	s.purger = mocks.NewMockCertificatePurger(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, WithCertificatePurger(s.purger), WithAuditPublisher(s.publisher))
	s.now = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) TestCreateCourse() {
	s.Run("derives slug and appends after the last course", func() {
		s.store.EXPECT().NextCourseOrder(gomock.Any()).Return(3, nil)
		s.store.EXPECT().CreateCourse(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, c *models.Course) error {
				s.Equal(id.Slug("engine-basics"), c.Slug)
				s.Equal(3, c.Order)
				s.True(c.IsActive)
				s.Equal(s.now, c.CreatedAt)
				return nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(string(audit.EventCourseCreated), e.Action)
				return nil
			})

		c, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: "Engine Basics", Image: "engines.png"})
		s.Require().NoError(err)
		s.Equal("Engine Basics", c.Title)
	})

	s.Run("duplicate slug is a field error", func() {
		s.store.EXPECT().NextCourseOrder(gomock.Any()).Return(0, nil)
		s.store.EXPECT().CreateCourse(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: "Engines", Image: "x.png"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateSlug))
		s.Equal([]string{"has already been taken"}, dErrors.FieldErrors(err)["slug"])
	})

	s.Run("missing image never reaches the store", func() {
		_, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: "Engines"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(dErrors.FieldErrors(err), "image")
	})

	s.Run("store failure is internal", func() {
		s.store.EXPECT().NextCourseOrder(gomock.Any()).Return(0, errors.New("connection reset"))
		_, err := s.service.CreateCourse(s.ctx, &models.CreateCourseRequest{Title: "Engines", Image: "x.png"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestDeleteCourse() {
	courseID := id.NewCourseID()
	subIDs := []id.SubCourseID{id.NewSubCourseID(), id.NewSubCourseID()}

	s.Run("purges certificates before removing the course", func() {
		gomock.InOrder(
			s.store.EXPECT().SubCourseIDs(gomock.Any(), courseID).Return(subIDs, nil),
			s.purger.EXPECT().DeleteBySubCourses(gomock.Any(), subIDs).Return(4, nil),
			s.store.EXPECT().DeleteCourse(gomock.Any(), courseID).Return(2, nil),
		)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal("2", e.Attributes["sub_courses_removed"])
				s.Equal("4", e.Attributes["certificates_removed"])
				return nil
			})

		s.Require().NoError(s.service.DeleteCourse(s.ctx, courseID))
	})

	s.Run("missing course", func() {
		s.store.EXPECT().SubCourseIDs(gomock.Any(), courseID).Return(nil, sentinel.ErrNotFound)
		err := s.service.DeleteCourse(s.ctx, courseID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("purge failure stops the delete", func() {
		s.store.EXPECT().SubCourseIDs(gomock.Any(), courseID).Return(subIDs, nil)
		s.purger.EXPECT().DeleteBySubCourses(gomock.Any(), subIDs).Return(0, errors.New("boom"))
		err := s.service.DeleteCourse(s.ctx, courseID)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestReorderCourses() {
	a, b := id.NewCourseID(), id.NewCourseID()

	s.Run("empty list", func() {
		err := s.service.ReorderCourses(s.ctx, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("duplicates", func() {
		err := s.service.ReorderCourses(s.ctx, []id.CourseID{a, b, a})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown ids are an invalid scope", func() {
		s.store.EXPECT().ReorderCourses(gomock.Any(), []id.CourseID{a, b}, s.now).Return(sentinel.ErrScopeMismatch)
		err := s.service.ReorderCourses(s.ctx, []id.CourseID{a, b})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidScope))
	})
}

func (s *ServiceSuite) TestAuditFailureDoesNotFailMutation() {
	courseID := id.NewCourseID()
	s.store.EXPECT().FindCourseByID(gomock.Any(), courseID).Return(&models.Course{
		ID: courseID, Title: "Engines", Slug: "engines", Image: "x.png", IsActive: true, SubCourses: []*models.SubCourse{},
	}, nil)
	s.store.EXPECT().UpdateCourse(gomock.Any(), gomock.Any()).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink down"))

	c, err := s.service.ToggleCourseActive(s.ctx, courseID)
	s.Require().NoError(err)
	s.False(c.IsActive)
}
