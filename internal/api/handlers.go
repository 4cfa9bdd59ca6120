package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cleanmap/cleanmap/internal/domain"
	"github.com/cleanmap/cleanmap/internal/registry"
)

// ─── Marker handlers ────────────────────────────────────────────────────────
//
// GET  /markers                        — list all markers
// POST /markers                        — report a new marker
// POST /markers/{id}/cleanup-request   — claim a cleanup
// POST /markers/{id}/approve           — admin: confirm, award, remove
// POST /markers/{id}/reject            — admin: send back to open
// GET  /points/{key}                   — read a ledger total

// HandleListMarkers returns every marker in creation order.
// GET /markers
func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.markers.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if markers == nil {
		markers = []domain.Marker{}
	}
	writeJSON(w, http.StatusOK, markers)
}

type reportRequest struct {
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
	ImageRef string   `json:"image_ref"`
	Category string   `json:"category"`
	// Optional display-name override; the verified identity supplies the
	// subject either way.
	ReporterName string `json:"reporter_name"`
}

// handleReportMarker creates a new open marker.
// POST /markers
func (s *Server) handleReportMarker(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required")
		return
	}

	id := identityFromCtx(r.Context())
	reporter := id
	if req.ReporterName != "" {
		reporter.Name = req.ReporterName
	}

	m, err := s.markers.Create(r.Context(), registry.CreateInput{
		Lat:      *req.Lat,
		Lon:      *req.Lon,
		ImageRef: req.ImageRef,
		Category: req.Category,
		Reporter: reporter,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	markersReported.Inc()
	writeJSON(w, http.StatusCreated, m)
}

type claimRequest struct {
	ClaimantName string `json:"claimant_name"`
}

// handleRequestCleanup claims a marker for the calling identity.
// POST /markers/{id}/cleanup-request
func (s *Server) handleRequestCleanup(w http.ResponseWriter, r *http.Request) {
	id := identityFromCtx(r.Context())

	// Body is optional; an empty body claims under the token's name.
	var req claimRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	name := id.Name
	if req.ClaimantName != "" {
		name = req.ClaimantName
	}

	m, err := s.markers.Claim(r.Context(), chi.URLParam(r, "id"), registry.Claimant{
		Name:    name,
		Subject: id.Subject,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	markersClaimed.Inc()
	writeJSON(w, http.StatusOK, m)
}

// handleApproveCleanup confirms a cleanup and pays out.
// POST /markers/{id}/approve
func (s *Server) handleApproveCleanup(w http.ResponseWriter, r *http.Request) {
	caller := identityFromCtx(r.Context())
	awards, err := s.resolver.Approve(r.Context(), chi.URLParam(r, "id"), caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	markersApproved.Inc()
	if awards.Reporter != nil {
		pointsAwarded.WithLabelValues("reporter").Add(float64(awards.Reporter.Delta))
	}
	if awards.Claimant != nil {
		pointsAwarded.WithLabelValues("claimant").Add(float64(awards.Claimant.Delta))
	}
	writeJSON(w, http.StatusOK, awards)
}

// handleRejectCleanup sends a marker back to open.
// POST /markers/{id}/reject
func (s *Server) handleRejectCleanup(w http.ResponseWriter, r *http.Request) {
	caller := identityFromCtx(r.Context())
	m, err := s.resolver.Reject(r.Context(), chi.URLParam(r, "id"), caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	markersRejected.Inc()
	writeJSON(w, http.StatusOK, m)
}

// handleGetPoints reads a ledger total by identity key, e.g.
// GET /points/id:u-123 or GET /points/name:Bob (URL-escaped as needed).
func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed key")
		return
	}
	total, err := s.points.Read(r.Context(), key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"key":    key,
		"points": total,
	})
}

// ─── Context + token plumbing ───────────────────────────────────────────────

func withIdentityCtx(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func identityFromCtx(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
