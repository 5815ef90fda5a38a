// Package seenstore provides durable backends for the per-athlete seen-set.
package seenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prairielabs/trackwatch/internal/domain/dedupe"
)

// fileState is the on-disk shape: athlete id -> recorded result keys.
type fileState struct {
	SeenResults map[string][]string `json:"seen_results"`
}

// FileStore persists the seen-set as a JSON document. Writes go to a temp
// file first and are renamed into place, so a crash mid-persist leaves the
// previous state intact.
type FileStore struct {
	*dedupe.InMemorySeenSet
	path string
}

// NewFileStore creates a file-backed seen-set at path. The file need not
// exist yet; a missing file loads as an empty set.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		InMemorySeenSet: dedupe.NewInMemorySeenSet(),
		path:            path,
	}
}

// Load hydrates the set from disk. A missing file is an empty set; a
// corrupt or unreadable file is fatal, since proceeding with a wiped set
// would re-notify every historical result.
func (s *FileStore) Load(_ context.Context) error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	var state fileState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}
	s.Restore(state.SeenResults)
	return nil
}

// Persist writes the full state atomically. On failure the in-memory state
// is untouched and a retry persists the same accumulated keys.
func (s *FileStore) Persist(_ context.Context) error {
	state := fileState{SeenResults: s.Snapshot()}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrPersist, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}
