package handler

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hyrx/studio-backend/pkg/utils"
)

// CORS restricts browsers to the configured origin allow-list. Preflight
// requests are answered with the CORS headers only.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
					h.Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter applies a per-IP sliding window to the public endpoints.
type RateLimiter struct {
	maxPerMinute int
	mu           sync.Mutex
	clients      map[string][]time.Time
}

// NewRateLimiter creates a limiter with the given requests-per-minute cap.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		maxPerMinute: maxPerMinute,
		clients:      make(map[string][]time.Time),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		windowStart := time.Now().Add(-time.Minute)
		rl.mu.Lock()
		for ip, stamps := range rl.clients {
			kept := stamps[:0]
			for _, ts := range stamps {
				if ts.After(windowStart) {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(rl.clients, ip)
			} else {
				rl.clients[ip] = kept
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()
	windowStart := now.Add(-time.Minute)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	stamps := rl.clients[ip]
	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= rl.maxPerMinute {
		rl.clients[ip] = kept
		return false
	}

	rl.clients[ip] = append(kept, now)
	return true
}

// Middleware rejects over-limit clients with a 429 and the same message
// the completion provider's rate-limit path uses.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			utils.RespondError(w, http.StatusTooManyRequests, "Too many requests. Please try again in a moment.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware has already rewritten RemoteAddr when the
	// request came through a trusted proxy.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
