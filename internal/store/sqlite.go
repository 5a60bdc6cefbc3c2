package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultQuota mirrors the per-origin capacity of browser local storage.
const DefaultQuota = 5 << 20

// SQLiteStore implements KV and Documents using SQLite.
type SQLiteStore struct {
	db    *sql.DB
	quota int64
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, quota: DefaultQuota}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// SetQuota changes the byte quota enforced by SetItem. Zero or less
// disables the check.
func (s *SQLiteStore) SetQuota(n int64) {
	s.quota = n
}

// Quota returns the byte quota enforced by SetItem.
func (s *SQLiteStore) Quota() int64 {
	return s.quota
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS characters (
		character          TEXT PRIMARY KEY,
		type               TEXT NOT NULL DEFAULT '',
		level              INTEGER NOT NULL DEFAULT 1,
		explanation        TEXT NOT NULL DEFAULT '',
		components         TEXT,
		evolution          TEXT,
		related_characters TEXT,
		common_words       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_characters_level ON characters(level);
	CREATE INDEX IF NOT EXISTS idx_characters_type ON characters(type);

	CREATE TABLE IF NOT EXISTS learning_pathways (
		grade      INTEGER PRIMARY KEY,
		characters TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetItem(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var used int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(length(CAST(value AS BLOB)) + length(CAST(key AS BLOB))), 0)
			 FROM kv WHERE key != ?`, key).Scan(&used)
		if err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		need := used + int64(len(key)) + int64(len(value))
		if need > s.quota {
			return fmt.Errorf("set item %q: %w (%d of %d bytes)", key, ErrQuotaExceeded, need, s.quota)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
