// Package store implements a generic document store backed by a single JSON
// file. A store holds one collection; Load reads the whole collection,
// Commit replaces the whole file in one atomic rename so a reader never
// observes a partially written document.
//
// Mutations MUST go through Update, which runs load→apply→commit while
// holding the store's writer slot. Two concurrent Updates on the same store
// would otherwise race on the load/commit pair and lose one side's write.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ─── Errors ─────────────────────────────────────────────────────────────────

// ErrCorrupt marks a backing file whose content does not parse.
var ErrCorrupt = errors.New("corrupt document")

// StoreError wraps any persistence failure with the operation and path.
// Callers surface it as a server-side failure; it is safe for the caller
// to retry when the precondition still holds.
type StoreError struct {
	Op   string // "load" or "commit"
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ─── Store ──────────────────────────────────────────────────────────────────

// Options controls per-store policy.
type Options struct {
	// Lenient makes Load return an empty collection instead of an error
	// when the backing file is corrupt. This trades durability for
	// availability and is only acceptable for low-stakes collections.
	Lenient bool
}

// Store is a document store for one collection of type T.
type Store[T any] struct {
	path  string
	empty func() T
	opts  Options
	sem   chan struct{} // writer slot; capacity 1
}

// New creates a store over the given file path. empty produces the
// zero collection used when the file does not exist yet (first run).
func New[T any](path string, empty func() T, opts Options) *Store[T] {
	return &Store[T]{
		path:  path,
		empty: empty,
		opts:  opts,
		sem:   make(chan struct{}, 1),
	}
}

// Path returns the backing file path.
func (s *Store[T]) Path() string { return s.path }

// Load reads the current committed collection. A missing file yields the
// empty collection and no error. Because Commit replaces the file by
// atomic rename, Load always observes a fully committed snapshot and
// needs no coordination with writers.
func (s *Store[T]) Load() (T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.empty(), nil
		}
		return s.empty(), &StoreError{Op: "load", Path: s.path, Err: err}
	}
	if len(data) == 0 {
		return s.empty(), nil
	}

	v := s.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		if s.opts.Lenient {
			return s.empty(), nil
		}
		return s.empty(), &StoreError{Op: "load", Path: s.path, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	return v, nil
}

// Commit persists the whole collection: marshal to a temp file in the same
// directory, fsync, then rename over the backing file.
func (s *Store[T]) Commit(v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &StoreError{Op: "commit", Path: s.path, Err: err}
	}
	return nil
}

// Update runs load→fn→commit as one indivisible unit with respect to other
// Updates on this store. It blocks for the writer slot only as long as ctx
// allows, so contended callers time out instead of deadlocking. If fn
// returns an error nothing is committed. The committed collection is
// returned on success.
//
// Once Commit's rename has happened the mutation is durable; ctx
// cancellation after that point does not roll it back.
func (s *Store[T]) Update(ctx context.Context, fn func(T) (T, error)) (T, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		return s.empty(), ctx.Err()
	}

	v, err := s.Load()
	if err != nil {
		return s.empty(), err
	}
	next, err := fn(v)
	if err != nil {
		return s.empty(), err
	}
	if err := s.Commit(next); err != nil {
		return s.empty(), err
	}
	return next, nil
}
