// Package persistence defines the injected storage capability for the
// user's favorite-session set, so the engine stays testable without a real
// backend. The set is read once at startup and rewritten on every mutation.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sync"
)

// FavoriteStore persists the ordered favorite-session id list.
//
// Load tolerates missing or corrupt state by returning an empty list; the
// favorite set degrades, it never takes the engine down.
type FavoriteStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// MemoryFavoriteStore keeps the favorite set in process memory. It backs
// tests and deployments that do not care about persistence.
type MemoryFavoriteStore struct {
	mu  sync.Mutex
	ids []string
}

// NewMemoryFavoriteStore returns an empty in-memory store.
func NewMemoryFavoriteStore() *MemoryFavoriteStore {
	return &MemoryFavoriteStore{}
}

// Load implements FavoriteStore.
func (s *MemoryFavoriteStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// Save implements FavoriteStore.
func (s *MemoryFavoriteStore) Save(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make([]string, len(ids))
	copy(s.ids, ids)
	return nil
}

// FileFavoriteStore persists the favorite set as a JSON array in a single
// file, mirroring the fixed-key client storage it replaces.
type FileFavoriteStore struct {
	mu   sync.Mutex
	path string
}

// NewFileFavoriteStore returns a store writing to path.
func NewFileFavoriteStore(path string) *FileFavoriteStore {
	return &FileFavoriteStore{path: path}
}

// Load implements FavoriteStore. A missing or unparseable file loads as an
// empty list.
func (s *FileFavoriteStore) Load(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, nil
	}
	return ids, nil
}

// Save implements FavoriteStore, rewriting the whole file.
func (s *FileFavoriteStore) Save(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
