// Package store persists synthesized clips in a local SQLite database so
// that repeated phrases (prompts, confirmations) skip the TTS round-trip.
//
// The cache sits above the adapter: the demuxer and the HTTP client stay
// stateless, and a nil *Store disables caching entirely.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Clip is one cached synthesis result.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
	Voice      string
}

// Store wraps the SQLite clip cache.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS clips (
		key         TEXT PRIMARY KEY,
		provider    TEXT NOT NULL,
		voice       TEXT,
		pcm         BLOB NOT NULL,
		sample_rate INTEGER NOT NULL,
		channels    INTEGER NOT NULL,
		created_at  INTEGER NOT NULL
	)`)
	return err
}

// Key derives the cache key for a synthesis request. Anything that changes
// the audio must be part of it.
func Key(provider, voice string, speed float64, text string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%g|%s", provider, voice, speed, text)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached clip for key, or nil when absent.
func (s *Store) Get(key string) (*Clip, error) {
	var c Clip
	err := s.db.QueryRow(
		`SELECT pcm, sample_rate, channels, voice FROM clips WHERE key = ?`, key,
	).Scan(&c.PCM, &c.SampleRate, &c.Channels, &c.Voice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	return &c, nil
}

// Put stores a clip under key, replacing any previous entry.
func (s *Store) Put(key, provider string, c *Clip) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO clips (key, provider, voice, pcm, sample_rate, channels, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, provider, c.Voice, c.PCM, c.SampleRate, c.Channels, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
