package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency. The API layer maps
// them to HTTP status codes; the core never retries them.

var (
	// ErrInvalidInput means the create payload was malformed (non-finite
	// coordinates, missing image reference). Caller error, not retried.
	ErrInvalidInput = errors.New("invalid marker input")

	// ErrNotFound means no marker exists with the given id.
	ErrNotFound = errors.New("marker not found")

	// ErrConflict means an illegal transition was attempted, e.g. claiming
	// a marker that is already pending.
	ErrConflict = errors.New("marker already claimed")

	// ErrForbidden means the caller lacks the admin capability.
	ErrForbidden = errors.New("admin capability required")
)
