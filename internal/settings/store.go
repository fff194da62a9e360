// Package settings persists user preferences in SQLite.
// Uses WAL mode for crash-safe writes. Persistence is best-effort:
// callers treat save failures as non-fatal and keep the in-memory
// configuration authoritative for the session.
package settings

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/powertray/powertray/internal/afk"
)

// Persisted keys. AfkTargetPlan is the raw 16-byte plan identifier;
// an absent row means unset.
const (
	keyAfkTimeoutMinutes = "AfkTimeoutMinutes"
	keyAfkTargetPlan     = "AfkTargetPlan"
)

// Store wraps a SQLite connection holding the settings table.
type Store struct {
	db *sql.DB
}

// Open creates or opens the settings database at dir/settings.db.
// Enables WAL mode and a 5-second busy timeout so a CLI invocation and
// a running daemon can share the file.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "settings.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close cleanly shuts down the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Load returns the persisted AFK configuration, defaulting to disabled
// (timeout 0) and an unset target for any missing or malformed field.
func (s *Store) Load() (afk.Config, error) {
	cfg := afk.Config{}

	if raw, ok, err := s.get(keyAfkTimeoutMinutes); err != nil {
		return cfg, err
	} else if ok {
		if n, err := strconv.ParseUint(string(raw), 10, 32); err == nil {
			cfg.TimeoutMinutes = int(n)
		}
	}

	if raw, ok, err := s.get(keyAfkTargetPlan); err != nil {
		return cfg, err
	} else if ok && len(raw) == 16 {
		id, err := uuid.FromBytes(raw)
		if err == nil {
			cfg.TargetPlan = id
		}
	}

	return cfg, nil
}

// Save writes the AFK configuration synchronously. A Nil target is
// still written so a later Load sees it as unset.
func (s *Store) Save(cfg afk.Config) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	timeout := []byte(strconv.FormatUint(uint64(uint32(cfg.TimeoutMinutes)), 10))
	if err := upsert(tx, keyAfkTimeoutMinutes, timeout); err != nil {
		return err
	}
	target := cfg.TargetPlan // uuid is a [16]byte
	if err := upsert(tx, keyAfkTargetPlan, target[:]); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(tx *sql.Tx, key string, value []byte) error {
	_, err := tx.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
