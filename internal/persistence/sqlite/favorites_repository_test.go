package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestRepository(t *testing.T) *FavoriteRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "favorites.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return repo
}

func TestFavoriteRepository_RoundTrip(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	ids, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("fresh store must be empty, got %v", ids)
	}

	if err := repo.Save(ctx, []string{"S002", "S001"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	ids, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(ids) != 2 || ids[0] != "S002" || ids[1] != "S001" {
		t.Fatalf("stored order lost: %v", ids)
	}
}

func TestFavoriteRepository_SaveRewritesWholeSet(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, []string{"S001", "S002", "S003"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := repo.Save(ctx, []string{"S002"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	ids, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(ids) != 1 || ids[0] != "S002" {
		t.Fatalf("expected replaced set, got %v", ids)
	}
}
