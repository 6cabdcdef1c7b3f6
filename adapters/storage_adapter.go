package adapters

import "context"

// StorageAdapter persists the single session record across restarts.
// Implement this interface to use custom storage backends (Redis, SQLite,
// browser localStorage bridges, etc.).
//
// Load returns (nil, nil) when no record is stored.
type StorageAdapter interface {
	// Save replaces the stored record atomically.
	Save(ctx context.Context, record SessionRecord) error

	// Load retrieves the stored record, or nil if absent.
	Load(ctx context.Context) (*SessionRecord, error)

	// Clear removes the stored record. Clearing an empty store is not an
	// error.
	Clear(ctx context.Context) error
}
