package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStorageAdapter stores the session record in a single-row SQLite
// table, for desktop-style hosts that want the record to survive restarts
// without an external service.
type SQLiteStorageAdapter struct {
	db  *sql.DB
	key string
}

// Ensure SQLiteStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*SQLiteStorageAdapter)(nil)

// NewSQLiteStorageAdapter opens (or creates) the database at path and
// prepares the record table. key distinguishes multiple records in one
// database.
func NewSQLiteStorageAdapter(path, key string) (*SQLiteStorageAdapter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_records (
		key TEXT PRIMARY KEY,
		record TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStorageAdapter{db: db, key: key}, nil
}

func (s *SQLiteStorageAdapter) Save(ctx context.Context, record SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO session_records (key, record) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record`,
		s.key, string(data))
	return err
}

func (s *SQLiteStorageAdapter) Load(ctx context.Context) (*SessionRecord, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM session_records WHERE key = ?`, s.key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var record SessionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("storage: failed to unmarshal record: %w", err)
	}
	return &record, nil
}

func (s *SQLiteStorageAdapter) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_records WHERE key = ?`, s.key)
	return err
}

// Close releases the underlying database handle.
func (s *SQLiteStorageAdapter) Close() error {
	return s.db.Close()
}
