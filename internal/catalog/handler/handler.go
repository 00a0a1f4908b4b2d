package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"academy/internal/catalog/models"
	"academy/internal/catalog/query"
	"academy/internal/catalog/service"
	id "academy/pkg/domain"
	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

// Service is the catalog surface used over HTTP.
type Service interface {
	ListCourses(ctx context.Context, filter service.ListFilter, page, pageSize int) (query.Page[*models.Course], error)
	GetCourseByID(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	PublicCourse(ctx context.Context, slug string) (*models.Course, error)
	PublicSubCourse(ctx context.Context, courseSlug, subSlug string) (*models.Course, *models.SubCourse, error)
	CreateCourse(ctx context.Context, req *models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, courseID id.CourseID, req *models.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, courseID id.CourseID) error
	ToggleCourseActive(ctx context.Context, courseID id.CourseID) (*models.Course, error)
	ReorderCourses(ctx context.Context, ids []id.CourseID) error

	ListSubCourses(ctx context.Context, courseID id.CourseID, filter query.Filter, page, pageSize int) (*models.Course, query.Page[*models.SubCourse], error)
	GetSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) (*models.SubCourse, error)
	CreateSubCourse(ctx context.Context, courseID id.CourseID, req *models.CreateSubCourseRequest) (*models.SubCourse, error)
	UpdateSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID, req *models.UpdateSubCourseRequest) (*models.SubCourse, error)
	DeleteSubCourse(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) error
	ToggleSubCourseActive(ctx context.Context, courseID id.CourseID, subID id.SubCourseID) (*models.SubCourse, error)
	ReorderSubCourses(ctx context.Context, courseID id.CourseID, ids []id.SubCourseID) error
}

// Handler serves the public catalog and its administration.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the visitor-facing catalog reads.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/api/courses", h.HandleListPublic)
	r.Get("/api/courses/{slug}", h.HandleGetPublic)
	r.Get("/api/courses/{slug}/sub-courses/{subSlug}", h.HandleGetPublicSubCourse)
}

// RegisterAdmin mounts course management under an already-guarded router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.HandleListAdmin)
		r.Post("/", h.HandleCreateCourse)
		r.Put("/reorder", h.HandleReorderCourses)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetCourse)
			r.Put("/", h.HandleUpdateCourse)
			r.Delete("/", h.HandleDeleteCourse)
			r.Patch("/toggle-status", h.HandleToggleCourse)

			r.Get("/sub-courses", h.HandleListSubCourses)
			r.Post("/sub-courses", h.HandleCreateSubCourse)
			r.Put("/sub-courses/reorder", h.HandleReorderSubCourses)
			r.Get("/sub-courses/{subID}", h.HandleGetSubCourse)
			r.Put("/sub-courses/{subID}", h.HandleUpdateSubCourse)
			r.Delete("/sub-courses/{subID}", h.HandleDeleteSubCourse)
			r.Patch("/sub-courses/{subID}/toggle-status", h.HandleToggleSubCourse)
		})
	})
}

// HandleListPublic handles GET /api/courses.
func (h *Handler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage := httputil.PageParams(r, query.DefaultPageSize)
	filter := service.ListFilter{Search: r.URL.Query().Get("search"), ActiveOnly: true}

	result, err := h.service.ListCourses(ctx, filter, page, perPage)
	if err != nil {
		h.fail(ctx, w, "failed to list courses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPageResponse(result, toPublicCourse))
}

// HandleGetPublic handles GET /api/courses/{slug}.
func (h *Handler) HandleGetPublic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.service.PublicCourse(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(ctx, w, "failed to load course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPublicCourse(c))
}

// HandleGetPublicSubCourse handles GET /api/courses/{slug}/sub-courses/{subSlug}.
func (h *Handler) HandleGetPublicSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, sc, err := h.service.PublicSubCourse(ctx, chi.URLParam(r, "slug"), chi.URLParam(r, "subSlug"))
	if err != nil {
		h.fail(ctx, w, "failed to load sub-course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PublicSubCourseResponse{
		Course:    toPublicCourse(c),
		SubCourse: toPublicSubCourse(sc),
	})
}

func (h *Handler) HandleListAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, perPage := httputil.PageParams(r, query.DefaultPageSize)
	result, err := h.service.ListCourses(ctx, service.ListFilter{Search: r.URL.Query().Get("search")}, page, perPage)
	if err != nil {
		h.fail(ctx, w, "failed to list courses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPageResponse(result, toCourseResponse))
}

func (h *Handler) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[models.CreateCourseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.CreateCourse(ctx, req)
	if err != nil {
		h.fail(ctx, w, "failed to create course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCourseResponse(c))
}

func (h *Handler) HandleGetCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.GetCourseByID(ctx, courseID)
	if err != nil {
		h.fail(ctx, w, "failed to load course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCourseResponse(c))
}

func (h *Handler) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateCourseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.UpdateCourse(ctx, courseID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCourseResponse(c))
}

func (h *Handler) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(ctx, courseID); err != nil {
		h.fail(ctx, w, "failed to delete course", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggleCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	c, err := h.service.ToggleCourseActive(ctx, courseID)
	if err != nil {
		h.fail(ctx, w, "failed to toggle course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCourseResponse(c))
}

func (h *Handler) HandleReorderCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ReorderRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ids, err := req.CourseIDs()
	if err == nil {
		err = h.service.ReorderCourses(ctx, ids)
	}
	if err != nil {
		h.fail(ctx, w, "failed to reorder courses", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListSubCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	page, perPage := httputil.PageParams(r, query.DefaultPageSize)
	_, result, err := h.service.ListSubCourses(ctx, courseID, query.Filter{Search: r.URL.Query().Get("search")}, page, perPage)
	if err != nil {
		h.fail(ctx, w, "failed to list sub-courses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPageResponse(result, toSubCourseResponse))
}

func (h *Handler) HandleCreateSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.CreateSubCourseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	sc, err := h.service.CreateSubCourse(ctx, courseID, req)
	if err != nil {
		h.fail(ctx, w, "failed to create sub-course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSubCourseResponse(sc))
}

func (h *Handler) HandleGetSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, subID, ok := h.subCourseIDs(w, r)
	if !ok {
		return
	}
	sc, err := h.service.GetSubCourse(ctx, courseID, subID)
	if err != nil {
		h.fail(ctx, w, "failed to load sub-course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubCourseResponse(sc))
}

func (h *Handler) HandleUpdateSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, subID, ok := h.subCourseIDs(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateSubCourseRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	sc, err := h.service.UpdateSubCourse(ctx, courseID, subID, req)
	if err != nil {
		h.fail(ctx, w, "failed to update sub-course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubCourseResponse(sc))
}

func (h *Handler) HandleDeleteSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, subID, ok := h.subCourseIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteSubCourse(ctx, courseID, subID); err != nil {
		h.fail(ctx, w, "failed to delete sub-course", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleToggleSubCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, subID, ok := h.subCourseIDs(w, r)
	if !ok {
		return
	}
	sc, err := h.service.ToggleSubCourseActive(ctx, courseID, subID)
	if err != nil {
		h.fail(ctx, w, "failed to toggle sub-course", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSubCourseResponse(sc))
}

func (h *Handler) HandleReorderSubCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, ok := h.courseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ReorderRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	ids, err := req.SubCourseIDs()
	if err == nil {
		err = h.service.ReorderSubCourses(ctx, courseID, ids)
	}
	if err != nil {
		h.fail(ctx, w, "failed to reorder sub-courses", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) courseID(w http.ResponseWriter, r *http.Request) (id.CourseID, bool) {
	courseID, err := id.ParseCourseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CourseID{}, false
	}
	return courseID, true
}

func (h *Handler) subCourseIDs(w http.ResponseWriter, r *http.Request) (id.CourseID, id.SubCourseID, bool) {
	courseID, ok := h.courseID(w, r)
	if !ok {
		return id.CourseID{}, id.SubCourseID{}, false
	}
	subID, err := id.ParseSubCourseID(chi.URLParam(r, "subID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CourseID{}, id.SubCourseID{}, false
	}
	return courseID, subID, true
}

// fail logs client errors at warn and everything else at error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.ToHTTPStatus(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}

