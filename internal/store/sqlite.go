package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/cadre/internal/model"
)

var _ model.SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the last good records of each table in a SQLite database
// so a failed refresh can serve stale data.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures the
// snapshots table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS snapshots (
		table_name TEXT PRIMARY KEY,
		records    TEXT    NOT NULL,
		fetched_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshots table: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// SaveSnapshot replaces the stored records of table.
func (s *SQLiteStore) SaveSnapshot(table string, records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding snapshot of %s: %w", table, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (table_name, records, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(table_name) DO UPDATE SET records = excluded.records, fetched_at = excluded.fetched_at`,
		table, string(data), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot of %s: %w", table, err)
	}
	return nil
}

// LoadSnapshot returns the stored records of table and when they were
// fetched. A table never saved yields model.ErrNotFound.
func (s *SQLiteStore) LoadSnapshot(table string) ([]model.Record, time.Time, error) {
	var (
		data      string
		fetchedAt int64
	)
	err := s.db.QueryRow("SELECT records, fetched_at FROM snapshots WHERE table_name = ?", table).Scan(&data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("snapshot of %s: %w", table, model.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading snapshot of %s: %w", table, err)
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding snapshot of %s: %w", table, err)
	}
	return records, time.UnixMilli(fetchedAt), nil
}

// Prune deletes snapshots older than the given duration.
func (s *SQLiteStore) Prune(olderThan time.Duration) error {
	cutoff := s.now().Add(-olderThan).UnixMilli()
	_, err := s.db.Exec("DELETE FROM snapshots WHERE fetched_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("pruning snapshots older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
