package security

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter caps requests per client IP over a fixed window. It guards the
// sign-in endpoints against credential stuffing; authenticated traffic is
// not limited.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
}

type clientWindow struct {
	remaining   int
	windowStart time.Time
}

// NewRateLimiter allows limit requests per window for each client IP
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
	}
	go rl.evictStale()
	return rl
}

// Allow reports whether a request from the IP fits within its window
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok || now.Sub(c.windowStart) >= rl.window {
		rl.clients[ip] = &clientWindow{remaining: rl.limit - 1, windowStart: now}
		return true
	}

	if c.remaining > 0 {
		c.remaining--
		return true
	}
	return false
}

// evictStale drops client entries whose window is long past
func (rl *RateLimiter) evictStale() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if now.Sub(c.windowStart) > rl.window*2 {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// GetClientIP extracts the client IP, trusting proxy headers when present
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The first entry is the originating client.
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
