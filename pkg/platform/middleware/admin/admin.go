package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "vaxreg/pkg/domain-errors"
	"vaxreg/pkg/platform/httputil"
	"vaxreg/pkg/requestcontext"
)

type contextKeyAdminActorID struct{}

// GetAdminActorID returns the X-Admin-Actor-ID captured for audit attribution, or "".
func GetAdminActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(contextKeyAdminActorID{}).(string); ok {
		return actorID
	}
	return ""
}

// RequireAdminToken guards operator routes with a shared X-Admin-Token.
// An empty expected token rejects every request.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get("X-Admin-Token")
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			if actorID := r.Header.Get("X-Admin-Actor-ID"); actorID != "" {
				ctx = context.WithValue(ctx, contextKeyAdminActorID{}, actorID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
