package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/way-19/consulting19/internal/auth"
	"github.com/way-19/consulting19/pkg/httputil"
	"github.com/way-19/consulting19/pkg/logger"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// visitorIDKey is the context key for the anonymous visitor id.
const visitorIDKey contextKey = "visitor_id"

// VisitorIdentity reads the signed visitor cookie and stores the visitor id
// in the request context. A missing, expired or tampered cookie is replaced
// by a freshly issued one, so every request downstream has a visitor.
func VisitorIdentity(tokens *auth.VisitorTokens, secureCookie bool, l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visitorID := ""
			if c, err := r.Cookie(auth.VisitorCookieName); err == nil && c.Value != "" {
				id, err := tokens.Parse(c.Value)
				if err != nil {
					l.DebugContext(r.Context(), "discarding visitor cookie", slog.String("error", err.Error()))
				} else {
					visitorID = id
				}
			}

			if visitorID == "" {
				id, token, err := tokens.Issue(time.Now().UTC())
				if err != nil {
					l.ErrorContext(r.Context(), "failed to issue visitor token", slog.String("error", err.Error()))
					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
						Error: &httputil.ErrorResponse{Code: "INTERNAL_ERROR", Message: "an internal error occurred"},
					})
					return
				}
				visitorID = id
				http.SetCookie(w, &http.Cookie{
					Name:     auth.VisitorCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(tokens.TTL().Seconds()),
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), visitorIDKey, visitorID)
			ctx = logger.WithVisitorID(ctx, visitorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// visitorIDFromContext extracts the visitor id stored by VisitorIdentity.
func visitorIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(visitorIDKey).(string)
	return id
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
