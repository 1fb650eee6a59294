package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"speechtrack/internal/models"
	"speechtrack/internal/security"
	"speechtrack/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	IdentityContextKey ContextKey = "identity"
	UserContextKey     ContextKey = "user"
)

// SessionCookieName is the cookie carrying the session ID for browser clients.
const SessionCookieName = "session_id"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	rateLimiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, rateLimiter *security.RateLimiter) *Middleware {
	return &Middleware{
		authService: authService,
		rateLimiter: rateLimiter,
	}
}

// sessionID extracts the session ID from the cookie or, for non-browser
// clients, a bearer Authorization header.
func sessionID(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth requires a valid session. The resolved identity, and the
// account when one exists, land in the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := sessionID(r)
		if id == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}

		identity, user, err := m.authService.ValidateSession(id)
		if err != nil {
			// Clear the stale cookie so browsers stop resending it.
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, "Session expired or invalid", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		if user != nil {
			ctx = context.WithValue(ctx, UserContextKey, user)
		}
		next(w, r.WithContext(ctx))
	}
}

// RequireDoctor requires a valid session belonging to a doctor account
func (m *Middleware) RequireDoctor(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil || !user.IsDoctor() {
			respondWithError(w, http.StatusForbidden, "Doctor access required", "", nil)
			return
		}
		next(w, r)
	})
}

// RateLimit rejects clients that exceed the configured request rate
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.rateLimiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetIdentityFromContext retrieves the authenticated identity from the
// request context.
func GetIdentityFromContext(ctx context.Context) string {
	identity, ok := ctx.Value(IdentityContextKey).(string)
	if !ok {
		return ""
	}
	return identity
}

// GetUserFromContext retrieves the account from the request context. It is
// nil for anonymous identities.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
