// Package server provides HTTP server initialization and lifecycle management
// for the Lineage API.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/lineage-works/lineage/internal/config"
	"github.com/lineage-works/lineage/internal/engine"
	"github.com/lineage-works/lineage/internal/privacy"
	"github.com/lineage-works/lineage/internal/storage"
	"github.com/lineage-works/lineage/web/handlers"
)

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server over the given store.
// Returns the actual address being listened on (useful for testing with
// port 0). The server drains on ctx cancellation.
func Start(ctx context.Context, cfg *config.Config, store storage.TreeStore) string {
	policy := privacy.Policy{
		BornOnOrAfter:  time.Date(cfg.Privacy.BirthCutoffYear, 1, 1, 0, 0, 0, 0, time.UTC),
		AgeCutoffYears: cfg.Privacy.AgeCutoffYears,
	}
	historic := engine.HistoricPolicy{
		CutoffYears: cfg.Privacy.HistoricCutoffYears,
		MaxHops:     cfg.Privacy.HistoricMaxHops,
	}
	explorer := engine.NewExplorer(store, policy, historic)

	api := handlers.NewAPIHandlers(explorer, store, cfg)
	stream := handlers.NewStreamHandler(explorer, cfg)
	rateLimiter := handlers.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)

	mux := http.NewServeMux()

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/graph/neighborhood", getOnly(api.GetNeighborhood))
	apiMux.HandleFunc("/api/graph/family/parents", getOnly(api.GetFamilyParents))
	apiMux.HandleFunc("/api/graph/family/children", getOnly(api.GetFamilyChildren))
	apiMux.HandleFunc("/api/relationship/path", getOnly(api.GetRelationshipPath))

	// Health endpoint stays unauthenticated for monitoring.
	mux.HandleFunc("/api/health", getOnly(api.GetHealth))

	// WebSocket streaming endpoint, authenticated like the rest of the API.
	apiMux.Handle("/api/graph/stream", stream)

	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// Wrap the server with rate limiting, request ids, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = handlers.RequestIDMiddleware(handler)
	handler = securityHeadersMiddleware(handler)

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	return actualAddr
}

func getOnly(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		fn(w, r)
	}
}
