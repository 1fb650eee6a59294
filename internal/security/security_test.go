package security

import (
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestRateLimiterEnforcesLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d blocked within limit", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request over limit was allowed")
	}

	// A different client has its own window.
	if !rl.Allow("5.6.7.8") {
		t.Fatal("unrelated client was blocked")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}, "10.0.0.2:1234", "9.9.9.9"},
		{"single forwarded", map[string]string{"X-Forwarded-For": "9.9.9.9"}, "10.0.0.2:1234", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": "8.8.8.8"}, "10.0.0.2:1234", "8.8.8.8"},
		{"remote addr", nil, "10.0.0.2:1234", "10.0.0.2:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword() rejected the right password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword() accepted the wrong password")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		t.Errorf("hash is not bcrypt: %v", err)
	}
}

func TestSessionCookieFlags(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	expires := time.Now().Add(time.Hour)

	cookie := CreateSessionCookie(r, "session_id", "abc", expires)
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
	if cookie.Secure {
		t.Error("session cookie marked Secure on a plain HTTP request")
	}

	r.Header.Set("X-Forwarded-Proto", "https")
	if !CreateSessionCookie(r, "session_id", "abc", expires).Secure {
		t.Error("session cookie not Secure behind TLS proxy")
	}

	del := CreateDeleteCookie(r, "session_id")
	if del.MaxAge != -1 {
		t.Errorf("delete cookie MaxAge = %d, want -1", del.MaxAge)
	}
}
