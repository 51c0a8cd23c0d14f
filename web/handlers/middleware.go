package handlers

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lineage-works/lineage/internal/config"
)

// RequireAuth enforces bearer-token authentication in production mode.
// Development mode lets every request through. A production deployment
// without a configured token rejects everything rather than running open.
func RequireAuth(next http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Security.Mode == "development" {
			next.ServeHTTP(w, r)
			return
		}

		expected := cfg.Security.APIToken
		if expected == "" {
			unauthorized(w)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	respondErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", nil)
}

// RateLimiter hands out one token bucket per client address.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter creates a rate limiter. reqPerSec is the sustained
// per-client rate, burst the maximum per-client burst size.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rate.Limiter),
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
	}
}

func (rl *RateLimiter) allow(client string) bool {
	rl.mu.Lock()
	lim, ok := rl.clients[client]
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.clients[client] = lim
	}
	rl.mu.Unlock()
	return lim.Allow()
}

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware(next http.Handler, rl *RateLimiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := r.RemoteAddr
		if host, _, err := net.SplitHostPort(client); err == nil {
			client = host
		}
		if !rl.allow(client) {
			respondErrorCode(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware tags every request with an X-Request-ID header,
// keeping a caller-supplied id when one is present.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
