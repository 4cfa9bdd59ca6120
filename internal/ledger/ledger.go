// Package ledger is the points-by-identity accumulator.
//
// The ledger is a pure accumulator: it has no notion of "award already
// given". At-most-once-per-marker semantics live in the resolution
// coordinator, which only credits for a marker it just removed.
package ledger

import (
	"context"
	"fmt"

	"github.com/cleanmap/cleanmap/internal/store"
)

// Entry is one account in the ledger. DisplayName is the most recently
// observed name for the key, kept for display only — addressing always
// goes through the key.
type Entry struct {
	DisplayName string `json:"display_name,omitempty"`
	Total       int    `json:"total"`
}

// Store is the durable store type the ledger runs on.
type Store = store.Store[map[string]Entry]

// NewStore creates the ledger document store. lenient selects the
// availability-over-durability corruption policy: a corrupt points file
// loads as empty instead of failing every credit.
func NewStore(path string, lenient bool) *Store {
	return store.New(path, func() map[string]Entry { return map[string]Entry{} }, store.Options{Lenient: lenient})
}

// Ledger accumulates point totals keyed by identity key.
type Ledger struct {
	store *Store
}

// New creates a ledger over the given store.
func New(s *Store) *Ledger {
	return &Ledger{store: s}
}

// Credit adds delta points to the entry for key, creating it if absent,
// and refreshes the display-name hint. It returns the total after the
// credit. An empty (unaddressable) key is a no-op that returns zero.
// Concurrent credits to the same key accumulate additively; the store's
// Update primitive rules out lost updates.
//
// A negative delta is a programming error, not a caller failure.
func (l *Ledger) Credit(ctx context.Context, key, nameHint string, delta int) (int, error) {
	if delta < 0 {
		panic(fmt.Sprintf("ledger: negative credit delta %d", delta))
	}
	if key == "" {
		return 0, nil
	}

	var total int
	_, err := l.store.Update(ctx, func(entries map[string]Entry) (map[string]Entry, error) {
		e := entries[key]
		e.Total += delta
		if nameHint != "" {
			e.DisplayName = nameHint
		}
		entries[key] = e
		total = e.Total
		return entries, nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Read returns the accumulated total for key. Unknown keys read as zero,
// never as an error.
func (l *Ledger) Read(ctx context.Context, key string) (int, error) {
	entries, err := l.store.Load()
	if err != nil {
		return 0, err
	}
	return entries[key].Total, nil
}
