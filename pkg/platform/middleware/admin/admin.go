// Package admin gates the back-office routes behind a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "academy/pkg/domain-errors"
	"academy/pkg/platform/httputil"
	"academy/pkg/platform/secrets"
	"academy/pkg/requestcontext"
)

// HeaderName carries the admin token.
const HeaderName = "X-Admin-Token"

// ActorAdmin labels audit events raised through the admin surface.
const ActorAdmin = "admin"

// RequireAdminToken rejects requests whose token does not match expectedToken.
// expectedToken is either the token itself or its bcrypt hash. An empty
// expectedToken disables the admin surface entirely.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderName)
			if !tokenMatches(token, expectedToken) {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, ActorAdmin)))
		})
	}
}

func tokenMatches(token, expected string) bool {
	if expected == "" || token == "" {
		return false
	}
	if secrets.IsHash(expected) {
		return secrets.Verify(token, expected) == nil
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}
