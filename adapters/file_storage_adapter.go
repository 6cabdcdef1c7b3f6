package adapters

import (
	"context"
	"encoding/json"
	"os"
)

// FileStorageAdapter is the default storage adapter implementation using the
// file system. Stores the session record as JSON in a single file.
type FileStorageAdapter struct {
	filepath string
}

// Ensure FileStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*FileStorageAdapter)(nil)

// NewFileStorageAdapter creates a new FileStorageAdapter instance.
//
// Parameters:
//   - filepath: Path to the file where the session record will be stored
func NewFileStorageAdapter(filepath string) StorageAdapter {
	return &FileStorageAdapter{filepath: filepath}
}

// Save persists the session record to a JSON file.
func (f *FileStorageAdapter) Save(_ context.Context, record SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return os.WriteFile(f.filepath, data, 0644)
}

// Load retrieves the session record from a JSON file.
// Returns nil if the file doesn't exist.
func (f *FileStorageAdapter) Load(_ context.Context) (*SessionRecord, error) {
	data, err := os.ReadFile(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Clear removes the storage file.
func (f *FileStorageAdapter) Clear(_ context.Context) error {
	err := os.Remove(f.filepath)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
