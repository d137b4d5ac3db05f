package application

import (
	"context"
	"fmt"
	"os"

	"github.com/example/conference-agenda/internal/agenda"
)

// SnapshotSource fetches one raw snapshot document. Load awaits it exactly
// once per (re)load.
type SnapshotSource interface {
	Fetch(ctx context.Context) (*agenda.RawSnapshot, error)
}

// FileSource reads the snapshot from a local JSON file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading from path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch implements SnapshotSource.
func (s *FileSource) Fetch(ctx context.Context) (*agenda.RawSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("application: open snapshot %q: %w", s.Path, err)
	}
	defer f.Close()
	return agenda.DecodeSnapshot(f)
}

// StaticSource serves a fixed raw snapshot, mainly for tests.
type StaticSource struct {
	Raw *agenda.RawSnapshot
	Err error
}

// Fetch implements SnapshotSource.
func (s *StaticSource) Fetch(ctx context.Context) (*agenda.RawSnapshot, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Raw, nil
}
