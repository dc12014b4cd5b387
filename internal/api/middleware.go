package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/Mohomed-Zaid/HabitFlow/internal/db"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "sessionId"

type contextKey string

const userIDKey contextKey = "userID"

type AuthMiddleware struct {
	sessions *db.SessionRepository
}

func NewAuthMiddleware(sessions *db.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// RequireAuth resolves the session id from the cookie or, failing that,
// a bearer Authorization header. Every lookup re-validates expiry
// against the store, so a deleted or expired session fails immediately.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionIDFromRequest(r)
		if sessionID == "" {
			unauthorized(w, "Authentication required")
			return
		}

		session, err := m.sessions.Get(sessionID)
		if err != nil {
			unauthorized(w, "Invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, session.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func GetUserID(r *http.Request) string {
	if v := r.Context().Value(userIDKey); v != nil {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}
