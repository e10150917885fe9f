package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/abgdnv/productstore/pkg/web"
)

type contextKey string

const subjectContextKey = contextKey("subject")

// RequireBearer rejects requests without a valid bearer token with 401 and stores the
// token subject in the request context. A nil verifier lets everything through.
func RequireBearer(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				web.RespondError(w, logger, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "Rejected bearer token", "error", err)
				web.RespondError(w, logger, http.StatusUnauthorized, "Invalid token")
				return
			}

			subject, _ := token.Subject()
			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the token subject stored by RequireBearer, or "".
func Subject(ctx context.Context) string {
	if value, ok := ctx.Value(subjectContextKey).(string); ok {
		return value
	}
	return ""
}
