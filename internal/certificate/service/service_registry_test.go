package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	catalogmodels "academy/internal/catalog/models"
	catalogservice "academy/internal/catalog/service"
	catalogstore "academy/internal/catalog/store"
	"academy/internal/certificate/codegen"
	"academy/internal/certificate/models"
	"academy/internal/certificate/service"
	"academy/internal/certificate/store"
	usermodels "academy/internal/users/models"
	userstore "academy/internal/users/store"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/tx"
	"academy/pkg/requestcontext"
)

// scriptedCodes hands out a fixed sequence of codes, then falls back to a
// real generator.
type scriptedCodes struct {
	mu       sync.Mutex
	codes    []string
	fallback *codegen.Generator
}

func (g *scriptedCodes) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.codes) == 0 {
		return g.fallback.Next()
	}
	code := g.codes[0]
	g.codes = g.codes[1:]
	return code, nil
}

func (g *scriptedCodes) push(codes ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.codes = append(g.codes, codes...)
}

type RegistrySuite struct {
	suite.Suite
	certs   *store.InMemoryStore
	catalog *catalogservice.Service
	codes   *scriptedCodes
	service *service.Service
	ctx     context.Context

	ada    *usermodels.User
	course *catalogmodels.Course
	basics *catalogmodels.SubCourse
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC))
	runner := tx.NewLockRunner()

	s.certs = store.New()
	s.catalog = catalogservice.New(catalogstore.New(),
		catalogservice.WithTxRunner(runner),
		catalogservice.WithCertificatePurger(s.certs),
	)
	users := userstore.New()
	s.ada = userstore.SeedDemoUsers(s.ctx, users)[0]

	gen, err := codegen.New(codegen.DefaultLength)
	s.Require().NoError(err)
	s.codes = &scriptedCodes{fallback: gen}
	s.service = service.New(s.certs, users, s.catalog, s.codes,
		service.WithTxRunner(runner),
		service.WithMaxAttempts(16),
	)

	s.course, err = s.catalog.CreateCourse(s.ctx, &catalogmodels.CreateCourseRequest{Title: "Engines", Image: "engines.png"})
	s.Require().NoError(err)
	s.basics, err = s.catalog.CreateSubCourse(s.ctx, s.course.ID, &catalogmodels.CreateSubCourseRequest{Title: "Engine Basics"})
	s.Require().NoError(err)
}

func (s *RegistrySuite) issue(userID id.UserID, subID id.SubCourseID, date string) *models.View {
	v, err := s.service.Issue(s.ctx, &models.IssueRequest{
		UserID:      userID.String(),
		SubCourseID: subID.String(),
		IssueDate:   date,
	})
	s.Require().NoError(err)
	return v
}

func (s *RegistrySuite) TestIssueAndFind() {
	v := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")
	s.Len(v.Code, codegen.DefaultLength)
	s.True(codegen.Valid(v.Code))

	found, err := s.service.FindByCode(s.ctx, v.Code)
	s.Require().NoError(err)
	s.Equal(v.ID, found.ID)
	s.Equal("2024-05-01", found.IssueDate.String())

	got, err := s.service.Get(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal("Ada Lovelace", got.HolderName)
	s.Equal("Engines", got.CourseTitle)
	s.Equal("Engine Basics", got.SubCourseTitle)
}

func (s *RegistrySuite) TestDeletedCodeIsNeverReissued() {
	s.codes.push("SAMECODE23")
	first := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")
	s.Require().Equal("SAMECODE23", first.Code)
	s.Require().NoError(s.service.Delete(s.ctx, first.ID))

	s.codes.push("SAMECODE23", "NEXTCODE23")
	second := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")
	s.Equal("NEXTCODE23", second.Code)

	_, err := s.service.FindByCode(s.ctx, "SAMECODE23")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RegistrySuite) TestCodeStatusAfterDelete() {
	s.codes.push("DELETED234")
	v := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")

	status, err := s.service.CodeStatus(s.ctx, v.Code)
	s.Require().NoError(err)
	s.Equal(models.CodeActive, status.State)

	s.Require().NoError(s.service.Delete(s.ctx, v.ID))
	status, err = s.service.CodeStatus(s.ctx, v.Code)
	s.Require().NoError(err)
	s.Equal(models.CodeRetired, status.State)

	status, err = s.service.CodeStatus(s.ctx, "NEVERUSED2")
	s.Require().NoError(err)
	s.Equal(models.CodeUnused, status.State)
	s.True(status.WellFormed)
}

func (s *RegistrySuite) TestRegeneratedCodeIsRetired() {
	s.codes.push("ORIGINAL23", "REPLACED23")
	v := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")

	regenerated, err := s.service.RegenerateCode(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal("REPLACED23", regenerated.Code)
	s.Equal(v.ID, regenerated.ID)

	s.codes.push("ORIGINAL23", "ANOTHER234")
	other := s.issue(s.ada.ID, s.basics.ID, "2024-05-03")
	s.Equal("ANOTHER234", other.Code)
}

func (s *RegistrySuite) TestEditKeepsCode() {
	v := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")
	advanced, err := s.catalog.CreateSubCourse(s.ctx, s.course.ID, &catalogmodels.CreateSubCourseRequest{Title: "Advanced Engines"})
	s.Require().NoError(err)

	subID := advanced.ID.String()
	updated, err := s.service.Update(s.ctx, v.ID, &models.UpdateRequest{SubCourseID: &subID})
	s.Require().NoError(err)
	s.Equal(v.Code, updated.Code)
	s.Equal("Advanced Engines", updated.SubCourseTitle)
}

func (s *RegistrySuite) TestConcurrentIssuanceYieldsDistinctCodes() {
	// every code is offered twice so concurrent issuers collide
	const n = 12
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("CONCUR%04d", i)
		s.codes.push(code, code)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Issue(s.ctx, &models.IssueRequest{
				UserID:      s.ada.ID.String(),
				SubCourseID: s.basics.ID.String(),
				IssueDate:   "2024-05-01",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	all, err := s.certs.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, n)
	seen := map[string]bool{}
	for _, c := range all {
		s.False(seen[c.Code], "code %s issued twice", c.Code)
		seen[c.Code] = true
	}
}

func (s *RegistrySuite) TestListSearchAndOrder() {
	older := s.issue(s.ada.ID, s.basics.ID, "2023-01-10")
	newer := s.issue(s.ada.ID, s.basics.ID, "2024-03-01")

	page, err := s.service.List(s.ctx, service.ListFilter{}, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Items, 2)
	s.Equal(newer.ID, page.Items[0].ID)
	s.Equal(older.ID, page.Items[1].ID)

	for _, term := range []string{"ada", "ENGINE BASICS", "engines", older.Code} {
		page, err := s.service.List(s.ctx, service.ListFilter{Search: term}, 1, 0)
		s.Require().NoError(err)
		s.NotEmpty(page.Items, "search %q", term)
	}

	byCode, err := s.service.List(s.ctx, service.ListFilter{Search: older.Code}, 1, 0)
	s.Require().NoError(err)
	s.Require().Len(byCode.Items, 1)
	s.Equal(older.ID, byCode.Items[0].ID)

	none, err := s.service.List(s.ctx, service.ListFilter{Search: "grace"}, 1, 0)
	s.Require().NoError(err)
	s.Empty(none.Items)
}

func (s *RegistrySuite) TestCourseDeleteRemovesCertificates() {
	v := s.issue(s.ada.ID, s.basics.ID, "2024-05-01")

	s.Require().NoError(s.catalog.DeleteCourse(s.ctx, s.course.ID))

	_, err := s.service.Get(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	retired, err := s.certs.IsRetired(s.ctx, v.Code)
	s.Require().NoError(err)
	s.True(retired)
}

func (s *RegistrySuite) TestIssueForDeletedSubCourse() {
	s.Require().NoError(s.catalog.DeleteSubCourse(s.ctx, s.course.ID, s.basics.ID))

	_, err := s.service.Issue(s.ctx, &models.IssueRequest{
		UserID:      s.ada.ID.String(),
		SubCourseID: s.basics.ID.String(),
		IssueDate:   "2024-05-01",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
