package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lineage-works/lineage/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_DevelopmentModeSkipsAuth(t *testing.T) {
	cfg, _ := config.LoadConfig()
	cfg.Security.Mode = "development"

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_ProductionRejectsMissingToken(t *testing.T) {
	cfg, _ := config.LoadConfig()
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "secret-token"

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ProductionRejectsWrongToken(t *testing.T) {
	cfg, _ := config.LoadConfig()
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "secret-token"

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_ProductionAcceptsValidToken(t *testing.T) {
	cfg, _ := config.LoadConfig()
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = "secret-token"

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Authorization", "Bearer secret-token")

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_ProductionWithoutConfiguredTokenLocksOut(t *testing.T) {
	cfg, _ := config.LoadConfig()
	cfg.Security.Mode = "production"
	cfg.Security.APIToken = ""

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Authorization", "Bearer anything")

	rec := httptest.NewRecorder()
	RequireAuth(okHandler(), cfg).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimitMiddleware_AllowsBurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(1.0, 2)
	h := RateLimitMiddleware(okHandler(), rl)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}

func TestRateLimitMiddleware_BucketsArePerClient(t *testing.T) {
	rl := NewRateLimiter(1.0, 1)
	h := RateLimitMiddleware(okHandler(), rl)

	first := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	first.RemoteAddr = "203.0.113.10:4000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client keeps its own bucket.
	other := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	other.RemoteAddr = "203.0.113.99:4000"

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddleware_GeneratesID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestIDMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")

	rec := httptest.NewRecorder()
	RequestIDMiddleware(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
