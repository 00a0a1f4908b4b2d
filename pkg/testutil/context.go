package testutil

import (
	"context"
	"net/http"
	"time"

	"academy/pkg/platform/middleware/admin"
	"academy/pkg/requestcontext"
)

// AsAdmin marks the request as coming through the admin gate, for handler
// tests that mount routes without RequireAdminToken.
func AsAdmin(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), admin.ActorAdmin))
}

// WithClientIP sets the client address the way the metadata middleware would.
func WithClientIP(req *http.Request, ip string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, req.Header.Get("User-Agent"))
	return req.WithContext(ctx)
}

// FixedTime pins the request-scoped clock.
func FixedTime(ctx context.Context, t time.Time) context.Context {
	return requestcontext.WithTime(ctx, t)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
