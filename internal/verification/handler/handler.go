package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"academy/internal/verification/service"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

type Service interface {
	Verify(ctx context.Context, rawCode string) (service.Result, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public verification endpoint. Callers wrap r with
// rate limiting before registering.
func (h *Handler) Register(r chi.Router) {
	r.Post("/verify-certificate", h.HandleVerify)
}

type VerifyRequest struct {
	CertificateCode string `json:"certificate_code"`
}

type CertificateResponse struct {
	HolderName      string `json:"holder_name"`
	CourseTitle     string `json:"course_title"`
	SubCourseTitle  string `json:"sub_course_title"`
	CertificateCode string `json:"certificate_code"`
	IssueDate       string `json:"issue_date"`
}

type VerifyResponse struct {
	Certificate CertificateResponse `json:"certificate"`
}

type FailureResponse struct {
	Errors map[string][]string `json:"errors"`
}

// HandleVerify handles POST /verify-certificate. A body that cannot be read
// gets the same answer as an unknown code.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode verification request",
			"request_id", requestID,
			"error", err,
		)
		writeFailure(w, service.NotFoundMessage)
		return
	}

	result, err := h.service.Verify(ctx, req.CertificateCode)
	if err != nil {
		if msgs := dErrors.FieldErrors(err)["certificate_code"]; len(msgs) > 0 {
			writeFailure(w, msgs[0])
			return
		}
		h.logger.ErrorContext(ctx, "verification failed", "request_id", requestID, "error", err)
		writeFailure(w, service.NotFoundMessage)
		return
	}
	if !result.Valid {
		writeFailure(w, result.Message)
		return
	}

	c := result.Certificate
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{Certificate: CertificateResponse{
		HolderName:      c.HolderName,
		CourseTitle:     c.CourseTitle,
		SubCourseTitle:  c.SubCourseTitle,
		CertificateCode: c.Code,
		IssueDate:       c.IssueDate.String(),
	}})
}

func writeFailure(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusUnprocessableEntity, FailureResponse{
		Errors: map[string][]string{"certificate_code": {message}},
	})
}
