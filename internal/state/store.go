package state

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danieljhkim/kitforge/internal/fsops"
)

// Store provides an interface for persisting tree state.
type Store interface {
	// Load reads the tree state.
	// Returns os.ErrNotExist if the tree has no state yet.
	Load() (*TreeState, error)

	// Save writes the tree state atomically.
	Save(state *TreeState) error
}

// FileStore implements Store as one JSON file inside the working tree.
type FileStore struct {
	fs   fsops.FS
	path string
}

// NewFileStore creates a new FileStore backed by the given state path.
func NewFileStore(fs fsops.FS, path string) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
	}
}

// Load reads the tree state.
func (s *FileStore) Load() (*TreeState, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read tree state: %w", err)
	}

	var state TreeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree state: %w", err)
	}
	if state.Paths == nil {
		state.Paths = make(map[string]PathOwnership)
	}

	return &state, nil
}

// Save writes the tree state atomically.
func (s *FileStore) Save(state *TreeState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tree state: %w", err)
	}

	if err := s.fs.AtomicWrite(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tree state: %w", err)
	}

	return nil
}
