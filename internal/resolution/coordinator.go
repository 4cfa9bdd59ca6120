// Package resolution orchestrates moderator decisions on claimed markers:
// approve (remove the marker, credit the reporter and claimant) and reject
// (reset the marker to open).
//
// Approval touches two independently committed stores. The marker store
// commits first, then the ledger: a crash in between loses the award but
// can never pay twice for one marker, since only a marker that was just
// removed is ever credited. The window is accepted rather than closed with
// a multi-store transaction.
package resolution

import (
	"context"

	"github.com/cleanmap/cleanmap/internal/award"
	"github.com/cleanmap/cleanmap/internal/domain"
	"github.com/cleanmap/cleanmap/internal/ledger"
	"github.com/cleanmap/cleanmap/internal/registry"
)

// AdminFunc decides whether an identity may moderate. The subject
// allow-list lives outside the core; this predicate is all it sees.
type AdminFunc func(domain.Identity) bool

// Award is one realized credit: who, how much, and the total afterwards.
type Award struct {
	Key   string `json:"key"`
	Delta int    `json:"delta"`
	Total int    `json:"total"`
}

// Awards reports the outcome of an approval. A nil party had no
// addressable identity or a zero delta.
type Awards struct {
	Reporter *Award `json:"reporter,omitempty"`
	Claimant *Award `json:"claimant,omitempty"`
}

// Coordinator wires the registry, the award policy and the ledger.
type Coordinator struct {
	markers *registry.Registry
	ledger  *ledger.Ledger
	policy  award.Table
	isAdmin AdminFunc
}

// New creates a coordinator.
func New(markers *registry.Registry, l *ledger.Ledger, policy award.Table, isAdmin AdminFunc) *Coordinator {
	return &Coordinator{markers: markers, ledger: l, policy: policy, isAdmin: isAdmin}
}

// Approve confirms a cleanup: removes the marker, computes awards from the
// pre-removal snapshot and credits both parties. Fails with ErrForbidden
// before any mutation if the caller is not an admin, and with ErrNotFound
// if the marker does not exist.
func (c *Coordinator) Approve(ctx context.Context, markerID string, caller domain.Identity) (Awards, error) {
	if !c.isAdmin(caller) {
		return Awards{}, domain.ErrForbidden
	}

	snapshot, err := c.markers.ApproveAndRemove(ctx, markerID)
	if err != nil {
		return Awards{}, err
	}

	reporterDelta, claimantDelta := c.policy.ComputeAwards(snapshot)

	var out Awards
	if key := snapshot.ReporterKey(); key != "" && reporterDelta > 0 {
		total, err := c.ledger.Credit(ctx, key, snapshot.Reporter, reporterDelta)
		if err != nil {
			// Marker is already gone; the reporter award is lost.
			return out, err
		}
		out.Reporter = &Award{Key: key, Delta: reporterDelta, Total: total}
	}
	if key := snapshot.ClaimantKey(); key != "" && claimantDelta > 0 {
		total, err := c.ledger.Credit(ctx, key, snapshot.Claimant, claimantDelta)
		if err != nil {
			return out, err
		}
		out.Claimant = &Award{Key: key, Delta: claimantDelta, Total: total}
	}
	return out, nil
}

// Reject sends a marker back to open, clearing its claimant. Admin-gated
// like Approve; no points move.
func (c *Coordinator) Reject(ctx context.Context, markerID string, caller domain.Identity) (domain.Marker, error) {
	if !c.isAdmin(caller) {
		return domain.Marker{}, domain.ErrForbidden
	}
	return c.markers.Reject(ctx, markerID)
}
