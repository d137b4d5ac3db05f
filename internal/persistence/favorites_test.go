package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryFavoriteStore_RoundTrip(t *testing.T) {
	store := NewMemoryFavoriteStore()
	ctx := context.Background()

	if err := store.Save(ctx, []string{"S001", "S002"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	ids, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "S001" || ids[1] != "S002" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	// The returned slice is a copy, not a live view.
	ids[0] = "mutated"
	again, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if again[0] != "S001" {
		t.Fatal("Load leaked internal state")
	}
}

func TestFileFavoriteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favorites.json")
		store := NewFileFavoriteStore(path)

		if err := store.Save(ctx, []string{"S003"}); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
		ids, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(ids) != 1 || ids[0] != "S003" {
			t.Fatalf("unexpected ids: %v", ids)
		}
	})

	t.Run("missing file loads as empty", func(t *testing.T) {
		store := NewFileFavoriteStore(filepath.Join(t.TempDir(), "absent.json"))

		ids, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(ids) != 0 {
			t.Fatalf("expected empty list, got %v", ids)
		}
	})

	t.Run("corrupt file loads as empty", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "favorites.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("seed corrupt file: %v", err)
		}
		store := NewFileFavoriteStore(path)

		ids, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(ids) != 0 {
			t.Fatalf("expected empty list, got %v", ids)
		}
	})
}
