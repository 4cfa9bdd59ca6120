package ledger

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(NewStore(filepath.Join(t.TempDir(), "points.json"), false))
}

func TestCredit_CreatesEntry(t *testing.T) {
	l := newTestLedger(t)
	total, err := l.Credit(context.Background(), "id:u-1", "Alice", 10)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
}

func TestCredit_Accumulates(t *testing.T) {
	l := newTestLedger(t)
	l.Credit(context.Background(), "name:Bob", "Bob", 10)
	total, err := l.Credit(context.Background(), "name:Bob", "Bob", 30)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if total != 40 {
		t.Errorf("total = %d, want 40", total)
	}
}

func TestCredit_UnaddressableIsNoop(t *testing.T) {
	l := newTestLedger(t)
	total, err := l.Credit(context.Background(), "", "ghost", 10)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
	// Nothing persisted.
	if _, statErr := os.Stat(l.store.Path()); !os.IsNotExist(statErr) {
		t.Error("store file written for unaddressable credit")
	}
}

func TestCredit_NegativeDeltaPanics(t *testing.T) {
	l := newTestLedger(t)
	defer func() {
		if recover() == nil {
			t.Error("Credit with negative delta did not panic")
		}
	}()
	l.Credit(context.Background(), "id:u-1", "Alice", -1)
}

func TestCredit_UpdatesNameHint(t *testing.T) {
	l := newTestLedger(t)
	l.Credit(context.Background(), "id:u-1", "Alice", 5)
	l.Credit(context.Background(), "id:u-1", "Alicia", 5)

	entries, err := l.store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := entries["id:u-1"].DisplayName; got != "Alicia" {
		t.Errorf("DisplayName = %q, want Alicia", got)
	}
	if got := entries["id:u-1"].Total; got != 10 {
		t.Errorf("Total = %d, want 10", got)
	}
}

func TestRead_UnknownKeyIsZero(t *testing.T) {
	l := newTestLedger(t)
	total, err := l.Read(context.Background(), "id:nobody")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestRead_Idempotent(t *testing.T) {
	l := newTestLedger(t)
	l.Credit(context.Background(), "name:Bob", "Bob", 10)

	for i := 0; i < 3; i++ {
		total, err := l.Read(context.Background(), "name:Bob")
		if err != nil {
			t.Fatal(err)
		}
		if total != 10 {
			t.Fatalf("Read #%d = %d, want 10", i, total)
		}
	}
}

func TestCredit_ConcurrentNoLostUpdates(t *testing.T) {
	l := newTestLedger(t)
	const n = 40

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := l.Credit(context.Background(), "id:u-1", "Alice", 1); err != nil {
				t.Errorf("Credit: %v", err)
			}
		}()
	}
	wg.Wait()

	total, err := l.Read(context.Background(), "id:u-1")
	if err != nil {
		t.Fatal(err)
	}
	if total != n {
		t.Errorf("total = %d, want %d (lost update)", total, n)
	}
}
