// Package registry owns the marker collection and its state machine.
//
// States: open, pending. Transitions: open --claim--> pending,
// pending --reject--> open, {open, pending} --approve--> removed.
// Removal is the only exit; there is no persisted "approved" state.
package registry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cleanmap/cleanmap/internal/domain"
	"github.com/cleanmap/cleanmap/internal/store"
)

// Store is the durable store type the registry runs on.
type Store = store.Store[[]domain.Marker]

// NewStore creates the marker document store. Corruption is always strict
// here: a task list that silently came back empty would drop real reports.
func NewStore(path string) *Store {
	return store.New(path, func() []domain.Marker { return nil }, store.Options{})
}

// CreateInput is the validated-at-the-edge payload for a new marker.
type CreateInput struct {
	Lat      float64
	Lon      float64
	ImageRef string
	Category string
	Reporter domain.Identity
}

// Claimant identifies who is claiming a cleanup.
type Claimant struct {
	Name    string
	Subject string
}

// Registry is the marker collection plus its mutation rules.
type Registry struct {
	store *Store
	now   func() time.Time
	newID func() string
}

// New creates a registry over the given store.
func New(s *Store) *Registry {
	return &Registry{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create validates the input, appends a new open marker and persists the
// collection. Validation failures return domain.ErrInvalidInput before the
// store is touched.
func (r *Registry) Create(ctx context.Context, in CreateInput) (domain.Marker, error) {
	if !domain.ValidateLocation(in.Lat, in.Lon) || in.ImageRef == "" {
		return domain.Marker{}, domain.ErrInvalidInput
	}

	category := in.Category
	if category == "" {
		category = domain.CategoryUnclassified
	}
	reporter := in.Reporter.Name
	if reporter == "" {
		reporter = domain.AnonymousName
	}

	m := domain.Marker{
		ID:              r.newID(),
		Lat:             in.Lat,
		Lon:             in.Lon,
		ImageRef:        in.ImageRef,
		Category:        category,
		Reporter:        reporter,
		ReporterSubject: in.Reporter.Subject,
		Status:          domain.StatusOpen,
		CreatedAt:       r.now().UTC(),
	}

	_, err := r.store.Update(ctx, func(markers []domain.Marker) ([]domain.Marker, error) {
		return append(markers, m), nil
	})
	if err != nil {
		return domain.Marker{}, err
	}
	return m, nil
}

// List returns the committed collection in creation order.
func (r *Registry) List(ctx context.Context) ([]domain.Marker, error) {
	return r.store.Load()
}

// Claim transitions an open marker to pending and records the claimant.
// Returns domain.ErrConflict if the marker is already pending.
func (r *Registry) Claim(ctx context.Context, id string, by Claimant) (domain.Marker, error) {
	return r.mutate(ctx, id, func(m *domain.Marker) error {
		if m.Status != domain.StatusOpen {
			return domain.ErrConflict
		}
		m.Status = domain.StatusPending
		m.Claimant = by.Name
		m.ClaimantSubject = by.Subject
		return nil
	})
}

// Reject forces a marker back to open and clears the claimant fields.
// It is an unconditional reset: rejecting an already-open marker succeeds
// and leaves it open.
func (r *Registry) Reject(ctx context.Context, id string) (domain.Marker, error) {
	return r.mutate(ctx, id, func(m *domain.Marker) error {
		m.Status = domain.StatusOpen
		m.Claimant = ""
		m.ClaimantSubject = ""
		return nil
	})
}

// ApproveAndRemove deletes the marker and returns its pre-removal snapshot
// for award computation. The caller (the resolution coordinator) treats this
// and the ledger credit as one unit of work, marker store first.
func (r *Registry) ApproveAndRemove(ctx context.Context, id string) (domain.Marker, error) {
	var snapshot domain.Marker
	_, err := r.store.Update(ctx, func(markers []domain.Marker) ([]domain.Marker, error) {
		idx := indexOf(markers, id)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		snapshot = markers[idx]
		return append(markers[:idx], markers[idx+1:]...), nil
	})
	if err != nil {
		return domain.Marker{}, err
	}
	return snapshot, nil
}

// mutate applies fn to the marker with the given id inside one store Update.
func (r *Registry) mutate(ctx context.Context, id string, fn func(*domain.Marker) error) (domain.Marker, error) {
	var out domain.Marker
	_, err := r.store.Update(ctx, func(markers []domain.Marker) ([]domain.Marker, error) {
		idx := indexOf(markers, id)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		if err := fn(&markers[idx]); err != nil {
			return nil, err
		}
		out = markers[idx]
		return markers, nil
	})
	if err != nil {
		return domain.Marker{}, err
	}
	return out, nil
}

func indexOf(markers []domain.Marker, id string) int {
	for i := range markers {
		if markers[i].ID == id {
			return i
		}
	}
	return -1
}
