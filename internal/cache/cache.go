// Package cache provides an optional on-disk TTL cache for upstream
// responses, backed by SQLite. Cache correctness is best-effort: read or
// write failures are logged by callers and never fail a request.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a TTL key/value store over a single SQLite file.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &Store{db: db, ttl: ttl}, nil
}

// Key derives a stable cache key from a source identifier and the request
// envelope that produced the response.
func Key(source string, lat, lon float64, start, end string, params []string) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%s", source, lat, lon, start, end, strings.Join(params, ","))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached body for key if present and not expired.
func (s *Store) Get(key string) ([]byte, bool) {
	var body []byte
	var storedAt int64

	err := s.db.QueryRow(`SELECT body, stored_at FROM responses WHERE key = ?`, key).Scan(&body, &storedAt)
	if err != nil {
		return nil, false
	}

	if time.Since(time.Unix(storedAt, 0)) > s.ttl {
		// Expired; evict lazily
		s.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return nil, false
	}

	return body, true
}

// Put stores a response body under key, replacing any previous entry.
func (s *Store) Put(key string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (key, body, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, stored_at = excluded.stored_at`,
		key, body, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Purge removes all expired entries.
func (s *Store) Purge() error {
	cutoff := time.Now().Add(-s.ttl).Unix()
	_, err := s.db.Exec(`DELETE FROM responses WHERE stored_at < ?`, cutoff)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
