package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorageAdapter_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	adapter := NewFileStorageAdapter(path)

	record := SessionRecord{SessionID: "s1", StartTime: 100, LastActivity: 200, CurrentPage: "/notes"}
	if err := adapter.Save(context.Background(), record); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if loaded == nil || loaded.SessionID != "s1" || loaded.CurrentPage != "/notes" {
		t.Fatalf("loaded record does not match saved record: %+v", loaded)
	}
}

func TestFileStorageAdapter_LoadNonExistent(t *testing.T) {
	adapter := NewFileStorageAdapter(filepath.Join(t.TempDir(), "missing.json"))
	loaded, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error for nonexistent file: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected nil record for nonexistent file")
	}
}

func TestFileStorageAdapter_SaveReplacesWholeRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	adapter := NewFileStorageAdapter(path)

	adapter.Save(context.Background(), SessionRecord{SessionID: "s1", CurrentProjectID: "p1"})
	adapter.Save(context.Background(), SessionRecord{SessionID: "s1"})

	loaded, _ := adapter.Load(context.Background())
	if loaded.CurrentProjectID != "" {
		t.Fatal("expected save to replace the whole record")
	}
}

func TestFileStorageAdapter_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	adapter := NewFileStorageAdapter(path)
	adapter.Save(context.Background(), SessionRecord{SessionID: "s1"})

	if err := adapter.Clear(context.Background()); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected file to be deleted")
	}

	// Clearing an empty store is not an error.
	if err := adapter.Clear(context.Background()); err != nil {
		t.Fatalf("expected idempotent clear, got %v", err)
	}
}

func TestFileStorageAdapter_SaveError(t *testing.T) {
	adapter := NewFileStorageAdapter("/invalid/path/session.json")
	if err := adapter.Save(context.Background(), SessionRecord{SessionID: "s1"}); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestFileStorageAdapter_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	os.WriteFile(path, []byte("invalid json"), 0644)

	adapter := NewFileStorageAdapter(path)
	if _, err := adapter.Load(context.Background()); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
