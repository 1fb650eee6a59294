package security

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionID mints an opaque session identifier
func GenerateSessionID() string {
	return uuid.New().String()
}

// isSecureRequest reports whether the request arrived over HTTPS, directly
// or behind a TLS-terminating proxy.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}

// CreateSessionCookie builds the session cookie. HttpOnly always; Secure
// whenever the request came in over HTTPS.
func CreateSessionCookie(r *http.Request, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

// CreateDeleteCookie builds a cookie that clears the named one
func CreateDeleteCookie(r *http.Request, name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
	}
}
