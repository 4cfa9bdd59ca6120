// Package api provides the HTTP server for cleanmap. It maps the marker
// and points operations 1:1 to REST endpoints and translates domain errors
// to status codes; no business rule lives here.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cleanmap/cleanmap/internal/auth"
	"github.com/cleanmap/cleanmap/internal/domain"
	"github.com/cleanmap/cleanmap/internal/ledger"
	"github.com/cleanmap/cleanmap/internal/registry"
	"github.com/cleanmap/cleanmap/internal/resolution"
	"github.com/cleanmap/cleanmap/internal/store"
)

// Server is the cleanmap HTTP API server.
type Server struct {
	markers        *registry.Registry
	points         *ledger.Ledger
	resolver       *resolution.Coordinator
	verifier       *auth.Verifier
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(markers *registry.Registry, points *ledger.Ledger, resolver *resolution.Coordinator, verifier *auth.Verifier) *Server {
	return &Server{markers: markers, points: points, resolver: resolver, verifier: verifier}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	// Public reads
	r.Get("/markers", s.handleListMarkers)
	r.Get("/points/{key}", s.handleGetPoints)

	// Authenticated writes
	r.Group(func(r chi.Router) {
		r.Use(s.withIdentity)
		r.Post("/markers", s.handleReportMarker)
		r.Post("/markers/{id}/cleanup-request", s.handleRequestCleanup)
		r.Post("/markers/{id}/approve", s.handleApproveCleanup)
		r.Post("/markers/{id}/reject", s.handleRejectCleanup)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Identity middleware ────────────────────────────────────────────────────

type ctxKey int

const identityKey ctxKey = 0

// withIdentity verifies the bearer token and stores the resulting identity
// in the request context. Requests without a valid token get 401.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		id, err := s.verifier.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentityCtx(r.Context(), id)))
	})
}

// ─── Error mapping ──────────────────────────────────────────────────────────

// writeDomainError maps core errors to status codes. Store failures are
// server-side and reported as 500; everything else is the caller's problem.
func writeDomainError(w http.ResponseWriter, err error) {
	var se *store.StoreError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &se):
		writeError(w, http.StatusInternalServerError, "storage failure")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "store busy")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the mobile client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
