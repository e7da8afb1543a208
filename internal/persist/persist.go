package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const filePerms = 0600 // Owner read/write only

// Store is an atomic JSON file store for a single record. Writes go to a
// temp file first and are renamed into place, so a crash mid-write never
// leaves a truncated file behind.
type Store struct {
	mu       sync.Mutex
	filePath string
}

// NewStore creates a store for the named file under dataDir, creating the
// directory if needed.
func NewStore(dataDir, fileName string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &Store{filePath: filepath.Join(dataDir, fileName)}, nil
}

// Load reads the stored record into v. Returns os.ErrNotExist (wrapped) when
// nothing has been saved yet.
func (s *Store) Load(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(s.filePath), err)
	}
	return nil
}

// Save writes v with secure permissions.
func (s *Store) Save(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Write to temp file first, then rename (atomic)
	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, filePerms); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(s.filePath), err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return fmt.Errorf("failed to save %s: %w", filepath.Base(s.filePath), err)
	}

	return nil
}
