// Package admin serves the back-office lookups that sit beside catalog and
// certificate management: the holder picker and the recent audit trail.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	usermodels "academy/internal/users/models"
	audit "academy/pkg/platform/audit"
	"academy/pkg/platform/httputil"
	"academy/pkg/requestcontext"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// UserDirectory searches certificate holders.
type UserDirectory interface {
	Search(ctx context.Context, term string, limit int) ([]*usermodels.User, error)
}

// AuditReader lists recent audit events.
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	users  UserDirectory
	events AuditReader
	logger *slog.Logger
}

func New(users UserDirectory, events AuditReader, logger *slog.Logger) *Handler {
	return &Handler{users: users, events: events, logger: logger}
}

// RegisterAdmin mounts the lookups under an already-guarded router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/users", h.HandleSearchUsers)
	r.Get("/audit-events", h.HandleListAuditEvents)
}

// HandleSearchUsers handles GET /admin/users?search=&limit=.
func (h *Handler) HandleSearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	users, err := h.users.Search(ctx, r.URL.Query().Get("search"), limitParam(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to search users",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUsersListResponse(users))
}

// HandleListAuditEvents handles GET /admin/audit-events?limit=.
func (h *Handler) HandleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.events.ListRecent(ctx, limitParam(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditEventsResponse(events))
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
