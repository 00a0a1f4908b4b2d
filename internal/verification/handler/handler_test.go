package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/verification/service"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
)

type stubService struct {
	result service.Result
	err    error
	got    []string
}

func (s *stubService) Verify(_ context.Context, rawCode string) (service.Result, error) {
	s.got = append(s.got, rawCode)
	return s.result, s.err
}

func serve(t *testing.T, svc Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	req := httptest.NewRequest(http.MethodPost, "/verify-certificate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func failureMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var body FailureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Errors["certificate_code"]
}

func TestHandleVerify(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := &stubService{result: service.Result{Valid: true, Certificate: &service.Certificate{
			HolderName:     "Ada Lovelace",
			CourseTitle:    "Engines",
			SubCourseTitle: "Engine Basics",
			Code:           "ABCDEFGH23",
			IssueDate:      id.NewDate(2024, time.January, 10),
		}}}
		rec := serve(t, svc, `{"certificate_code":" ABCDEFGH23 "}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"certificate":{
			"holder_name":"Ada Lovelace",
			"course_title":"Engines",
			"sub_course_title":"Engine Basics",
			"certificate_code":"ABCDEFGH23",
			"issue_date":"2024-01-10"}}`, rec.Body.String())
		assert.Equal(t, []string{" ABCDEFGH23 "}, svc.got)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &stubService{result: service.Result{Message: service.NotFoundMessage}}
		rec := serve(t, svc, `{"certificate_code":"NOPE"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{service.NotFoundMessage}, failureMessages(t, rec))
	})

	t.Run("empty code", func(t *testing.T) {
		svc := &stubService{err: dErrors.Validation("certificate_code", service.EmptyMessage)}
		rec := serve(t, svc, `{"certificate_code":"   "}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, []string{"empty code"}, failureMessages(t, rec))
	})

	t.Run("malformed bodies look like unknown codes", func(t *testing.T) {
		for _, body := range []string{`{`, `{"certificate_code":42}`, `{"certificate_code":"X","extra":true}`, ``} {
			svc := &stubService{}
			rec := serve(t, svc, body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
			assert.Equal(t, []string{service.NotFoundMessage}, failureMessages(t, rec), body)
			assert.Empty(t, svc.got, body)
		}
	})

	t.Run("unexpected errors stay generic", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeInternal, "pq: relation does not exist")}
		rec := serve(t, svc, `{"certificate_code":"ABCDEFGH23"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.NotContains(t, rec.Body.String(), "relation")
	})
}
