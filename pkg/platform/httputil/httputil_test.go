package httputil

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/validation"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("plain error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, io.ErrUnexpectedEOF)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		if strings.Contains(w.Body.String(), "unexpected EOF") {
			t.Fatalf("expected raw error text to stay hidden, got %s", w.Body.String())
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]any
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("validation error carries field messages", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Validation("title", "is required"))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}
		var body struct {
			Errors map[string][]string `json:"errors"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if got := body.Errors["title"]; len(got) != 1 || got[0] != "is required" {
			t.Fatalf("expected title field error, got %v", body.Errors)
		}
	})
}

type sampleRequest struct {
	Title string   `json:"title" validate:"required,max=10"`
	Tags  []string `json:"tags"`
	Note  *string  `json:"note"`

	validated bool
}

func (r *sampleRequest) Validate() error {
	r.validated = true
	if err := validation.Struct(r); err != nil {
		return err
	}
	if r.Title == "reject" {
		return dErrors.Validation("title", "is reserved")
	}
	return nil
}

func decode(t *testing.T, body string) (*sampleRequest, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req, ok := DecodeAndPrepare[sampleRequest](w, r, logger, context.Background(), "req-1")
	if ok != (req != nil) {
		t.Fatalf("ok=%v but req=%v", ok, req)
	}
	return req, w
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("trims and validates", func(t *testing.T) {
		req, _ := decode(t, `{"title":"  Go  ","tags":[" a ","b "],"note":" hi "}`)
		if req == nil {
			t.Fatal("expected request to decode")
		}
		if req.Title != "Go" || req.Tags[0] != "a" || req.Tags[1] != "b" || *req.Note != "hi" {
			t.Fatalf("expected trimmed fields, got %+v", req)
		}
		if !req.validated {
			t.Fatal("expected Validate to run")
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		req, w := decode(t, `{"title":"Go","extra":1}`)
		if req != nil || w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("mismatched types rejected", func(t *testing.T) {
		_, w := decode(t, `{"title":42}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("tag validation reports json field names", func(t *testing.T) {
		_, w := decode(t, `{"title":"   "}`)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"title":["is required"]`) {
			t.Fatalf("expected title field error, got %s", w.Body.String())
		}
	})

	t.Run("max length", func(t *testing.T) {
		_, w := decode(t, `{"title":"this title is long"}`)
		if !strings.Contains(w.Body.String(), "must be at most 10 characters") {
			t.Fatalf("expected max message, got %s", w.Body.String())
		}
	})

	t.Run("Validate errors are written", func(t *testing.T) {
		_, w := decode(t, `{"title":"reject"}`)
		if w.Code != http.StatusUnprocessableEntity || !strings.Contains(w.Body.String(), "is reserved") {
			t.Fatalf("expected 422 with Validate message, got %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("empty body", func(t *testing.T) {
		_, w := decode(t, ``)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "request body is required") {
			t.Fatalf("expected 400 body required, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query       string
		wantPage    int
		wantPerPage int
	}{
		{"", 1, 9},
		{"?page=3&per_page=20", 3, 20},
		{"?page=abc&per_page=", 1, 9},
		{"?page=-2&per_page=0", -2, 0},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/courses"+tc.query, nil)
		page, perPage := PageParams(r, 9)
		if page != tc.wantPage || perPage != tc.wantPerPage {
			t.Fatalf("%q: got page=%d per_page=%d, want %d/%d", tc.query, page, perPage, tc.wantPage, tc.wantPerPage)
		}
	}
}
