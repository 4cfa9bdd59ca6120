package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newCounterStore(t *testing.T, opts Options) *Store[map[string]int] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counters.json")
	return New(path, func() map[string]int { return map[string]int{} }, opts)
}

// ─── Load / Commit ──────────────────────────────────────────────────────────

func TestLoad_MissingFile(t *testing.T) {
	s := newCounterStore(t, Options{})
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty collection", got)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	s := newCounterStore(t, Options{})
	if err := os.WriteFile(s.Path(), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() on empty file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty collection", got)
	}
}

func TestCommitThenLoad(t *testing.T) {
	s := newCounterStore(t, Options{})
	if err := s.Commit(map[string]int{"a": 1, "b": 2}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["a"] != 1 || got["b"] != 2 {
		t.Errorf("Load() = %v, want a=1 b=2", got)
	}
}

func TestCommit_LeavesNoTempFiles(t *testing.T) {
	s := newCounterStore(t, Options{})
	if err := s.Commit(map[string]int{"a": 1}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries after commit, want 1", len(entries))
	}
}

func TestCommit_FileIsValidJSON(t *testing.T) {
	s := newCounterStore(t, Options{})
	if err := s.Commit(map[string]int{"x": 7}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]int
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("committed file does not parse: %v", err)
	}
}

// ─── Corruption Policy ──────────────────────────────────────────────────────

func TestLoad_CorruptStrict(t *testing.T) {
	s := newCounterStore(t, Options{})
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Load()
	if err == nil {
		t.Fatal("Load() on corrupt file: want error, got nil")
	}
	var se *StoreError
	if !errors.As(err, &se) {
		t.Errorf("error = %T, want *StoreError", err)
	}
	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("error = %v, want ErrCorrupt in chain", err)
	}
}

func TestLoad_CorruptLenient(t *testing.T) {
	s := newCounterStore(t, Options{Lenient: true})
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() lenient on corrupt file: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Load() = %v, want empty collection", got)
	}
}

// ─── Update ─────────────────────────────────────────────────────────────────

func TestUpdate_AppliesAndCommits(t *testing.T) {
	s := newCounterStore(t, Options{})
	got, err := s.Update(context.Background(), func(c map[string]int) (map[string]int, error) {
		c["n"]++
		return c, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got["n"] != 1 {
		t.Errorf("Update returned n=%d, want 1", got["n"])
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded["n"] != 1 {
		t.Errorf("reloaded n=%d, want 1", reloaded["n"])
	}
}

func TestUpdate_FnErrorCommitsNothing(t *testing.T) {
	s := newCounterStore(t, Options{})
	sentinel := errors.New("nope")
	_, err := s.Update(context.Background(), func(c map[string]int) (map[string]int, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Update error = %v, want sentinel", err)
	}
	if _, statErr := os.Stat(s.Path()); !os.IsNotExist(statErr) {
		t.Error("backing file exists after failed Update, want untouched")
	}
}

func TestUpdate_NoLostUpdates(t *testing.T) {
	s := newCounterStore(t, Options{})
	const n = 50

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(context.Background(), func(c map[string]int) (map[string]int, error) {
				c["n"]++
				return c, nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got["n"] != n {
		t.Errorf("final count = %d, want %d (lost update)", got["n"], n)
	}
}

func TestUpdate_ContextCancelled(t *testing.T) {
	s := newCounterStore(t, Options{})

	// Park a mutation holding the writer slot.
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		s.Update(context.Background(), func(c map[string]int) (map[string]int, error) {
			close(started)
			<-release
			return c, nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Update(ctx, func(c map[string]int) (map[string]int, error) {
		return c, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Update with held slot = %v, want DeadlineExceeded", err)
	}
	close(release)
}
