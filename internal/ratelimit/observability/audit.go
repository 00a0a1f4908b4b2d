// Package observability provides audit logging helpers for the ratelimit module.
package observability

import (
	"context"
	"log/slog"

	"academy/pkg/attrs"
	audit "academy/pkg/platform/audit"
	"academy/pkg/requestcontext"
)

// AuditPublisher records security events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit writes event to the structured log and the audit publisher.
// attrList is a key/value list; "ip_prefix" becomes the subject and the
// remaining pairs become attributes.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, attrList ...any) {
	requestID := requestcontext.RequestID(ctx)
	args := append([]any{"event", string(event), "log_type", "audit", "request_id", requestID}, attrList...)
	if logger != nil {
		logger.InfoContext(ctx, string(event), args...)
	}
	if publisher == nil {
		return
	}

	if err := publisher.Emit(ctx, audit.Event{
		Action:     string(event),
		Subject:    attrs.ExtractString(attrList, "ip_prefix"),
		RequestID:  requestID,
		Attributes: attrs.StringMap(attrList, "ip_prefix"),
	}); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"request_id", requestID,
			"error", err,
		)
	}
}
