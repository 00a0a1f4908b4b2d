//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"academy/internal/catalog/models"
	"academy/internal/catalog/store"
	id "academy/pkg/domain"
	"academy/pkg/platform/sentinel"
	"academy/pkg/platform/tx"
	"academy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	runner   *tx.SQLRunner
	ctx      context.Context
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.runner = tx.NewSQLRunner(s.postgres.DB, 0)
	s.ctx = context.Background()
	s.now = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "courses", "sub_courses"))
}

func (s *PostgresStoreSuite) course(slug string, order int) *models.Course {
	c, err := models.NewCourse(id.NewCourseID(), "Course "+slug, id.Slug(slug), "desc", "img.png", order, true, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateCourse(s.ctx, c))
	return c
}

func (s *PostgresStoreSuite) subCourse(courseID id.CourseID, slug string, order int) *models.SubCourse {
	sc, err := models.NewSubCourse(id.NewSubCourseID(), courseID, "Sub "+slug, id.Slug(slug), "", "", []string{"Basic algebra", "Safety"}, order, true, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.CreateSubCourse(s.ctx, sc))
	return sc
}

func (s *PostgresStoreSuite) TestRoundTripWithPrerequisites() {
	c := s.course("engines", 0)
	sc := s.subCourse(c.ID, "basics", 0)

	found, err := s.store.FindCourseBySlug(s.ctx, "engines")
	s.Require().NoError(err)
	s.Require().Len(found.SubCourses, 1)
	s.Equal([]string{"Basic algebra", "Safety"}, found.SubCourses[0].Prerequisites)

	placements, err := s.store.FindPlacements(s.ctx, []id.SubCourseID{sc.ID, id.NewSubCourseID()})
	s.Require().NoError(err)
	s.Require().Len(placements, 1)
	s.Equal("Course engines", placements[sc.ID].Course.Title)
}

func (s *PostgresStoreSuite) TestDuplicateSlugs() {
	a := s.course("engines", 0)
	dup, err := models.NewCourse(id.NewCourseID(), "Dup", "engines", "", "img.png", 1, true, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateCourse(s.ctx, dup), sentinel.ErrAlreadyUsed)

	s.subCourse(a.ID, "basics", 0)
	dupSub, err := models.NewSubCourse(id.NewSubCourseID(), a.ID, "Dup", "basics", "", "", nil, 1, true, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateSubCourse(s.ctx, dupSub), sentinel.ErrAlreadyUsed)
}

func (s *PostgresStoreSuite) TestCreateSubCourseUnderMissingCourse() {
	sc, err := models.NewSubCourse(id.NewSubCourseID(), id.NewCourseID(), "Orphan", "orphan", "", "", nil, 0, true, s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.store.CreateSubCourse(s.ctx, sc), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteCourseCascades() {
	a := s.course("a", 0)
	b := s.course("b", 1)
	s.subCourse(a.ID, "one", 0)
	s.subCourse(a.ID, "two", 1)
	kept := s.subCourse(b.ID, "kept", 0)

	removed, err := s.store.DeleteCourse(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(2, removed)

	var remaining int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx, `SELECT COUNT(*) FROM sub_courses`).Scan(&remaining))
	s.Equal(1, remaining)
	_, err = s.store.FindSubCourse(s.ctx, kept.ID)
	s.NoError(err)
}

func (s *PostgresStoreSuite) TestReorderIsAllOrNothing() {
	a := s.course("a", 0)
	b := s.course("b", 1)
	x := s.subCourse(a.ID, "x", 0)
	y := s.subCourse(a.ID, "y", 1)
	foreign := s.subCourse(b.ID, "z", 0)

	err := s.runner.RunInTx(s.ctx, func(ctx context.Context) error {
		return s.store.ReorderSubCourses(ctx, a.ID, []id.SubCourseID{y.ID, foreign.ID}, s.now)
	})
	s.ErrorIs(err, sentinel.ErrScopeMismatch)

	ids, err := s.store.SubCourseIDs(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal([]id.SubCourseID{x.ID, y.ID}, ids)

	err = s.runner.RunInTx(s.ctx, func(ctx context.Context) error {
		return s.store.ReorderCourses(ctx, []id.CourseID{b.ID, a.ID}, s.now)
	})
	s.Require().NoError(err)
	courses, err := s.store.ListCourses(s.ctx)
	s.Require().NoError(err)
	s.Equal(b.ID, courses[0].ID)
	s.Equal(0, courses[0].Order)
	s.Equal(1, courses[1].Order)
}
