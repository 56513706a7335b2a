package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"taskManager/internal/identity"
	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const viewerKey contextKey = "viewer"

// Auth requires a bearer token and stores the caller identity in the request
// context. An empty secret skips signature verification.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, r, "missing bearer token")
				return
			}

			claims, err := identity.ParseToken(header, secret)
			if err != nil {
				logger.Warn("HTTP: rejected token",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
				unauthorized(w, r, "invalid bearer token")
				return
			}

			ctx := WithViewer(r.Context(), claims.Viewer())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithViewer(ctx context.Context, v identity.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey, v)
}

func ViewerFromContext(ctx context.Context) (identity.Viewer, bool) {
	v, ok := ctx.Value(viewerKey).(identity.Viewer)
	return v, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    msg,
		"request_id": GetRequestID(r.Context()),
	})
}
