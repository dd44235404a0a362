package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot persists the slot value as a JSON file under a state directory.
type FileSlot struct {
	path string
}

// NewFileSlot ensures the state directory exists and returns a handle.
func NewFileSlot(dir, key string) (*FileSlot, error) {
	if dir == "" {
		dir = "./state"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileSlot{path: filepath.Join(dir, key+".json")}, nil
}

// Get reads the slot file.
func (s *FileSlot) Get(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot file: %w", err)
	}
	return data, nil
}

// Put replaces the slot file contents.
func (s *FileSlot) Put(_ context.Context, data []byte) error {
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write slot file: %w", err)
	}
	return nil
}
