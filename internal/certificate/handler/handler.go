package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"academy/internal/catalog/query"
	"academy/internal/certificate/export"
	"academy/internal/certificate/models"
	"academy/internal/certificate/service"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxUploadBytes  = 5 << 20
)

// Service is the certificate surface used over HTTP.
type Service interface {
	Issue(ctx context.Context, req *models.IssueRequest) (*models.View, error)
	Update(ctx context.Context, certID id.CertificateID, req *models.UpdateRequest) (*models.View, error)
	RegenerateCode(ctx context.Context, certID id.CertificateID) (*models.View, error)
	Delete(ctx context.Context, certID id.CertificateID) error
	Get(ctx context.Context, certID id.CertificateID) (*models.View, error)
	List(ctx context.Context, filter service.ListFilter, page, pageSize int) (query.Page[*models.View], error)
	Document(ctx context.Context, certID id.CertificateID) ([]byte, string, error)
	Export(ctx context.Context, filter service.ListFilter) ([]byte, error)
	Import(ctx context.Context, r io.Reader) (*service.ImportResult, error)
	CodeStatus(ctx context.Context, code string) (*models.CodeStatus, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts certificate management under an already-guarded router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/certificates", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleIssue)
		r.Get("/export", h.HandleExport)
		r.Post("/import", h.HandleImport)
		r.Get("/import/template", h.HandleImportTemplate)
		r.Get("/codes/{code}", h.HandleCodeStatus)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/regenerate-code", h.HandleRegenerateCode)
			r.Get("/pdf", h.HandleDocument)
		})
	})
}

// HandleList handles GET /admin/certificates?search=&page=&per_page=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage := httputil.PageParams(r, query.DefaultPageSize)
	result, err := h.service.List(ctx, service.ListFilter{Search: r.URL.Query().Get("search")}, page, perPage)
	if err != nil {
		h.fail(ctx, w, "failed to list certificates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListResponse(result))
}

func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	v, err := h.service.Issue(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to issue certificate", err)
		return
	}
	h.logger.InfoContext(ctx, "certificate issued",
		"request_id", requestID,
		"certificate_id", v.ID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toCertificateResponse(v))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	v, err := h.service.Get(ctx, certID)
	if err != nil {
		h.fail(ctx, w, "failed to load certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(v))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	v, err := h.service.Update(ctx, certID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update certificate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(v))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, certID); err != nil {
		h.fail(ctx, w, "failed to delete certificate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerateCode handles POST /admin/certificates/{id}/regenerate-code.
func (h *Handler) HandleRegenerateCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	v, err := h.service.RegenerateCode(ctx, certID)
	if err != nil {
		h.fail(ctx, w, "failed to regenerate certificate code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(v))
}

func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	certID, ok := h.certificateID(w, r)
	if !ok {
		return
	}
	out, filename, err := h.service.Document(ctx, certID)
	if err != nil {
		h.fail(ctx, w, "failed to render certificate", err)
		return
	}
	writeFile(w, "application/pdf", filename, out)
}

// HandleExport handles GET /admin/certificates/export?search=.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.service.Export(ctx, service.ListFilter{Search: r.URL.Query().Get("search")})
	if err != nil {
		h.fail(ctx, w, "failed to export certificates", err)
		return
	}
	writeFile(w, xlsxContentType, "certificates.xlsx", out)
}

// HandleImport handles a multipart upload with an XLSX workbook in "file".
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.fail(ctx, w, "failed to read upload", dErrors.Wrap(err, dErrors.CodeBadRequest, "request must be a multipart upload"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		h.fail(ctx, w, "failed to read upload", dErrors.Validation("file", "is required"))
		return
	}
	defer file.Close()

	result, err := h.service.Import(ctx, file)
	if err != nil {
		h.fail(ctx, w, "failed to import certificates", err)
		return
	}
	h.logger.InfoContext(ctx, "certificates imported",
		"request_id", requestcontext.RequestID(ctx),
		"issued", len(result.Issued),
		"failed", len(result.Failed),
	)
	httputil.WriteJSON(w, http.StatusOK, toImportResponse(result))
}

func (h *Handler) HandleImportTemplate(w http.ResponseWriter, r *http.Request) {
	out, err := export.Template()
	if err != nil {
		h.fail(r.Context(), w, "failed to build import template", dErrors.Wrap(err, dErrors.CodeInternal, "template unavailable"))
		return
	}
	writeFile(w, xlsxContentType, "certificate-import.xlsx", out)
}

// HandleCodeStatus handles GET /admin/certificates/codes/{code}.
func (h *Handler) HandleCodeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.service.CodeStatus(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.fail(ctx, w, "failed to look up certificate code", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCodeStatusResponse(status))
}

func (h *Handler) certificateID(w http.ResponseWriter, r *http.Request) (id.CertificateID, bool) {
	certID, err := id.ParseCertificateID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CertificateID{}, false
	}
	return certID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.ToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

