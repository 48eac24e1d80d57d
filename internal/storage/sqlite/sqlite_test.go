package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"skyhook/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		err := store.SaveCommand(ctx, storage.CommandRecord{
			Function:  name,
			Module:    "anim",
			Success:   true,
			RequestID: name + "-id",
			TS:        base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("SaveCommand(%s): %v", name, err)
		}
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Новые первыми.
	if records[0].Function != "third" || records[2].Function != "first" {
		t.Fatalf("unexpected order: %v", records)
	}
	if records[0].Module != "anim" || !records[0].Success || records[0].RequestID != "third-id" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if !records[0].TS.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("TS = %v", records[0].TS)
	}
}

func TestRecentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := store.SaveCommand(ctx, storage.CommandRecord{Function: "fn"}); err != nil {
			t.Fatalf("SaveCommand: %v", err)
		}
	}
	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestPruneBefore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	for _, rec := range []storage.CommandRecord{
		{Function: "stale", TS: old},
		{Function: "stale_too", TS: old},
		{Function: "fresh", TS: fresh},
	} {
		if err := store.SaveCommand(ctx, rec); err != nil {
			t.Fatalf("SaveCommand: %v", err)
		}
	}

	pruned, err := store.PruneBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("pruned = %d, want 2", pruned)
	}
	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 1 || records[0].Function != "fresh" {
		t.Fatalf("unexpected records after prune: %v", records)
	}
}
