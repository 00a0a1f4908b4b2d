package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	usermodels "academy/internal/users/models"
	userstore "academy/internal/users/store"
	audit "academy/pkg/platform/audit"
	"academy/pkg/platform/audit/publisher"
	auditmemory "academy/pkg/platform/audit/store/memory"
	"academy/pkg/requestcontext"
)

type brokenDirectory struct{}

func (brokenDirectory) Search(context.Context, string, int) ([]*usermodels.User, error) {
	return nil, errors.New("connection reset")
}

type HandlerSuite struct {
	suite.Suite
	users     *userstore.InMemoryUserStore
	publisher *publisher.Publisher
	logger    *slog.Logger
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.users = userstore.New()
	userstore.SeedDemoUsers(context.Background(), s.users)
	s.publisher = publisher.NewPublisher(auditmemory.NewInMemoryStore())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *HandlerSuite) get(h *Handler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterAdmin(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (s *HandlerSuite) TestSearchUsers() {
	h := New(s.users, s.publisher, s.logger)

	s.Run("matches name or email", func() {
		rec := s.get(h, "/users?search=grace")
		s.Require().Equal(http.StatusOK, rec.Code)
		var body UsersListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Require().Equal(1, body.Total)
		s.Equal("Grace Hopper", body.Users[0].Name)
	})

	s.Run("limit caps results", func() {
		rec := s.get(h, "/users?limit=2")
		var body UsersListResponse
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		s.Len(body.Users, 2)
		s.Equal("Ada Lovelace", body.Users[0].Name)
	})

	s.Run("directory failure is a generic 500", func() {
		rec := s.get(New(brokenDirectory{}, s.publisher, s.logger), "/users")
		s.Equal(http.StatusInternalServerError, rec.Code)
		s.NotContains(rec.Body.String(), "connection reset")
	})
}

func (s *HandlerSuite) TestListAuditEventsNewestFirst() {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
	s.Require().NoError(s.publisher.Emit(ctx, audit.Event{Action: string(audit.EventCourseCreated), Subject: "c1"}))
	s.Require().NoError(s.publisher.Emit(ctx, audit.Event{Action: string(audit.EventCertificateIssued), Subject: "cert1"}))

	rec := s.get(New(s.users, s.publisher, s.logger), "/audit-events?limit=1")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), "203.0.113.7")

	var body AuditEventsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Require().Len(body.Events, 1)
	s.Equal("certificate_issued", body.Events[0].Action)
	s.Equal("compliance", body.Events[0].Category)
	s.Equal("cert1", body.Events[0].Subject)
}
