// Package store persists posting history and scheduler state in SQLite.
// Every published post is recorded with its feature flags so the report
// command can aggregate posting analytics.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed analytics and state store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// PostRecord is one published post with its composition flags.
type PostRecord struct {
	ID            int64
	Artist        string
	Title         string
	Museum        string
	TweetLength   int
	HasBirthday   bool
	HasGlossary   bool
	MovementTheme string
	DominantColor string
	ImageSize     string // "WxH" of the published image
	PostedAt      time.Time
}

// NewStore opens (or creates) the database at the given path.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	s := &Store{db: db}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// init creates the necessary tables if they don't exist
func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			artist          TEXT NOT NULL,
			title           TEXT NOT NULL,
			museum          TEXT NOT NULL,
			tweet_length    INTEGER NOT NULL,
			has_birthday    INTEGER NOT NULL DEFAULT 0,
			has_glossary    INTEGER NOT NULL DEFAULT 0,
			movement_theme  TEXT,
			dominant_color  TEXT,
			image_size      TEXT,
			posted_at       TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS artists (
			name        TEXT PRIMARY KEY,
			post_count  INTEGER NOT NULL DEFAULT 0,
			last_posted TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS museums (
			name        TEXT PRIMARY KEY,
			post_count  INTEGER NOT NULL DEFAULT 0,
			last_posted TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS state (
			key    TEXT PRIMARY KEY,
			value  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_posted ON posts(posted_at);
		CREATE INDEX IF NOT EXISTS idx_posts_artist ON posts(artist);
	`)
	return err
}

const lastRunKey = "last_run"

// GetLastRun returns the timestamp of the last successful post, or nil when
// the bot has never posted.
func (s *Store) GetLastRun() (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT value FROM state WHERE key = ?`, lastRunKey)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("corrupt last_run value %q: %w", value, err)
	}
	return &t, nil
}

// SetLastRun records a successful post time. Only called after the platform
// accepted the post, so a failed run never advances the schedule.
func (s *Store) SetLastRun(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`, lastRunKey, t.UTC().Format(time.RFC3339))
	return err
}

// MonthlyCount returns how many posts were published in the month containing
// the given time.
func (s *Store) MonthlyCount(now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month := now.UTC().Format("2006-01")
	row := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts
		WHERE strftime('%Y-%m', posted_at) = ?
	`, month)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// RecordPost inserts the post and bumps the per-artist and per-museum
// counters in one transaction.
func (s *Store) RecordPost(rec PostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	postedAt := rec.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now()
	}
	nowStr := postedAt.UTC().Format(time.RFC3339)

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO posts (artist, title, museum, tweet_length, has_birthday,
			has_glossary, movement_theme, dominant_color, image_size, posted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Artist, rec.Title, rec.Museum, rec.TweetLength,
		boolToInt(rec.HasBirthday), boolToInt(rec.HasGlossary),
		rec.MovementTheme, rec.DominantColor, rec.ImageSize, nowStr)
	if err != nil {
		return err
	}

	for _, upsert := range []struct {
		table, name string
	}{
		{"artists", rec.Artist},
		{"museums", rec.Museum},
	} {
		if upsert.name == "" {
			continue
		}
		_, err = tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (name, post_count, last_posted) VALUES (?, 1, ?)
			ON CONFLICT(name) DO UPDATE SET
				post_count=post_count+1, last_posted=excluded.last_posted
		`, upsert.table), upsert.name, nowStr)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentPosts returns the newest posts, most recent first.
func (s *Store) RecentPosts(limit int) ([]PostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, artist, title, museum, tweet_length, has_birthday,
			has_glossary, movement_theme, dominant_color, image_size, posted_at
		FROM posts
		ORDER BY posted_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PostRecord
	for rows.Next() {
		rec, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanPost(rows *sql.Rows) (PostRecord, error) {
	var rec PostRecord
	var hasBirthday, hasGlossary int
	var movement, color, size sql.NullString
	var postedAt string

	err := rows.Scan(&rec.ID, &rec.Artist, &rec.Title, &rec.Museum, &rec.TweetLength,
		&hasBirthday, &hasGlossary, &movement, &color, &size, &postedAt)
	if err != nil {
		return rec, err
	}

	rec.HasBirthday = hasBirthday != 0
	rec.HasGlossary = hasGlossary != 0
	rec.MovementTheme = movement.String
	rec.DominantColor = color.String
	rec.ImageSize = size.String
	if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
		rec.PostedAt = t
	}
	return rec, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
