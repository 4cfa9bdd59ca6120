// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"math"
	"time"
)

// ─── Marker Types ───────────────────────────────────────────────────────────

// Status is the lifecycle state of a marker. There are only two persisted
// states; an approved marker is removed from the collection rather than
// transitioning to a third state.
type Status string

const (
	// StatusOpen means the marker is reported and waiting for someone to
	// clean it up.
	StatusOpen Status = "open"

	// StatusPending means someone claimed the cleanup and the marker is
	// waiting for moderator review.
	StatusPending Status = "pending"
)

// Default field values applied at creation, matching the mobile client.
const (
	// CategoryUnclassified is the sentinel category for reports that did
	// not specify one.
	CategoryUnclassified = "분류 안됨"

	// AnonymousName is the display name used when the reporter has none.
	AnonymousName = "익명"
)

// Marker is a reported cleanup task tied to a location.
type Marker struct {
	ID              string    `json:"id"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	ImageRef        string    `json:"image_ref"`
	Category        string    `json:"category"`
	Reporter        string    `json:"reporter"`
	ReporterSubject string    `json:"reporter_subject,omitempty"`
	Status          Status    `json:"status"`
	Claimant        string    `json:"claimant,omitempty"`
	ClaimantSubject string    `json:"claimant_subject,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ValidateLocation reports whether both coordinates are finite numbers.
// NaN and ±Inf can arrive through JSON number edge cases and must never
// be persisted.
func ValidateLocation(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsInf(lat, 0) &&
		!math.IsNaN(lon) && !math.IsInf(lon, 0)
}

// ReporterKey returns the ledger identity key for the marker's reporter,
// or "" if the reporter is unaddressable.
func (m Marker) ReporterKey() string {
	return IdentityKey(m.ReporterSubject, m.Reporter)
}

// ClaimantKey returns the ledger identity key for the marker's claimant,
// or "" if there is none or the claimant is unaddressable.
func (m Marker) ClaimantKey() string {
	return IdentityKey(m.ClaimantSubject, m.Claimant)
}
