// Package sqlitestore provides a SQLite-backed ProfileStore. Read-merge-write
// is serialized so two concurrent turns for the same user never lose an
// update.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/skosovsky/tutorsy"
	_ "modernc.org/sqlite"
)

// Store implements tutorsy.ProfileStore on SQLite.
type Store struct {
	db *sql.DB
	// upsertMu serializes read-merge-write across goroutines; the
	// transaction alone would surface SQLITE_BUSY under write contention.
	upsertMu sync.Mutex
	now      func() time.Time
}

// Open creates or opens the profile database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL mode for concurrent readers while a merge transaction is open.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS profiles (
		user_id      TEXT PRIMARY KEY,
		profile_json TEXT NOT NULL,
		version      INTEGER NOT NULL DEFAULT 1,
		updated_at   INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored profile for userID, reporting absence via ok=false.
func (s *Store) Get(ctx context.Context, userID string) (tutorsy.Profile, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile_json FROM profiles WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return tutorsy.Profile{}, false, nil
	}
	if err != nil {
		return tutorsy.Profile{}, false, fmt.Errorf("query profile: %w", err)
	}
	var p tutorsy.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return tutorsy.Profile{}, false, fmt.Errorf("decode profile: %w", err)
	}
	return p, true, nil
}

// Upsert merges p into the stored profile for p.UserID and returns the
// merged result. The read and the write share one transaction, and upsertMu
// keeps concurrent merges for any user strictly ordered.
func (s *Store) Upsert(ctx context.Context, p tutorsy.Profile) (tutorsy.Profile, error) {
	if p.UserID == "" {
		return p, nil
	}
	s.upsertMu.Lock()
	defer s.upsertMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tutorsy.Profile{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	var version int64
	var existing tutorsy.Profile
	err = tx.QueryRowContext(ctx,
		`SELECT profile_json, version FROM profiles WHERE user_id = ?`, p.UserID).
		Scan(&raw, &version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		version = 0
	case err != nil:
		return tutorsy.Profile{}, fmt.Errorf("query profile: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), &existing); err != nil {
			return tutorsy.Profile{}, fmt.Errorf("decode profile: %w", err)
		}
	}

	merged := existing.Merge(p)
	merged.LastInteraction = s.now()
	data, err := json.Marshal(merged)
	if err != nil {
		return tutorsy.Profile{}, fmt.Errorf("encode profile: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, profile_json, version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			profile_json = excluded.profile_json,
			version      = excluded.version,
			updated_at   = excluded.updated_at`,
		merged.UserID, string(data), version+1, s.now().Unix())
	if err != nil {
		return tutorsy.Profile{}, fmt.Errorf("write profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return tutorsy.Profile{}, fmt.Errorf("commit profile: %w", err)
	}
	return merged, nil
}

var _ tutorsy.ProfileStore = (*Store)(nil)
