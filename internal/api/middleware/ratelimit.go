package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a simple in-memory fixed-window rate limiter keyed
// by client identity. For multi-instance deployments move this to a shared
// store.
type RateLimiter struct {
	clients  map[string]*window
	requests int
	interval time.Duration
	mu       sync.Mutex
}

type window struct {
	resetAt time.Time
	count   int
}

// NewRateLimiter creates a limiter allowing requests per interval.
func NewRateLimiter(requests int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*window),
		requests: requests,
		interval: interval,
	}
	go rl.cleanup()
	return rl
}

// Middleware returns a rate limiting middleware. The session id is
// preferred as the client key so visitors behind shared NATs don't starve
// each other; unidentified requests fall back to the IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := GetUserID(r)
		if clientID == "" {
			clientID = clientIP(r)
		}

		if !rl.allow(clientID) {
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UTC()
	w, ok := rl.clients[clientID]
	if !ok || now.After(w.resetAt) {
		rl.clients[clientID] = &window{count: 1, resetAt: now.Add(rl.interval)}
		return true
	}
	if w.count < rl.requests {
		w.count++
		return true
	}
	return false
}

// cleanup drops expired windows so the map doesn't grow without bound.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.interval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now().UTC()
		for id, w := range rl.clients {
			if now.After(w.resetAt) {
				delete(rl.clients, id)
			}
		}
		rl.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if i := strings.IndexByte(forwarded, ','); i >= 0 {
			return strings.TrimSpace(forwarded[:i])
		}
		return forwarded
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
