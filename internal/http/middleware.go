package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestIDMiddleware echoes chi's request id back in the X-Request-ID header.
// It must run after middleware.RequestID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with status and latency.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.WithContext(r.Context(), log).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// RequireAdmin rejects requests unless the active session belongs to an admin.
func RequireAdmin(s *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.IsAuthenticated() {
				respondError(w, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}
			if !s.IsAdmin() {
				respondError(w, http.StatusForbidden, "permission_denied", "admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
