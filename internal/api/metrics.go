package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Metrics ────────────────────────────────────────────────────────────────
// Counters for the marker lifecycle and the points flow, exported on
// /metrics when enabled.

var (
	markersReported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanmap_markers_reported_total",
		Help: "Markers reported since process start.",
	})

	markersClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanmap_markers_claimed_total",
		Help: "Cleanup claims accepted since process start.",
	})

	markersApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanmap_markers_approved_total",
		Help: "Markers approved and removed since process start.",
	})

	markersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cleanmap_markers_rejected_total",
		Help: "Claims rejected back to open since process start.",
	})

	pointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cleanmap_points_awarded_total",
		Help: "Points credited through approvals, by party.",
	}, []string{"role"})
)
