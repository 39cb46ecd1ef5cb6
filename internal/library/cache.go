package library

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache is a SQLite-backed metadata cache keyed by file path.
//
// Reading tags and probing durations means opening every file, which is
// slow on large libraries. The cache stores the extracted metadata along
// with the file's size and modification time; a file is only re-read when
// either changes.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at the given path.
// The path can be ":memory:" for an in-memory cache.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS files (
			path     TEXT PRIMARY KEY,
			size     INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			clip_id  TEXT,
			title    TEXT,
			artist   TEXT,
			duration REAL
		);
		CREATE TABLE IF NOT EXISTS user_tags (
			clip_id TEXT PRIMARY KEY,
			liked   INTEGER NOT NULL DEFAULT 0,
			starred INTEGER NOT NULL DEFAULT 0,
			trashed INTEGER NOT NULL DEFAULT 0
		);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached entry for a file, or nil when the cache misses
// or the file changed since it was cached.
func (c *Cache) Get(path string, size int64, modTime time.Time) (*Entry, error) {
	query := `
		SELECT size, mod_time, clip_id, title, artist, duration
		FROM files
		WHERE path = ?
	`

	var (
		cachedSize    int64
		cachedModTime int64
		clipID        sql.NullString
		title         sql.NullString
		artist        sql.NullString
		duration      sql.NullFloat64
	)

	err := c.db.QueryRow(query, path).Scan(
		&cachedSize, &cachedModTime, &clipID, &title, &artist, &duration)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan cache entry: %w", err)
	}

	if cachedSize != size || cachedModTime != modTime.Unix() {
		return nil, nil
	}

	return &Entry{
		Path:     path,
		ClipID:   clipID.String,
		Title:    title.String,
		Artist:   artist.String,
		Duration: duration.Float64,
		Size:     size,
		ModTime:  modTime,
	}, nil
}

// Put stores or replaces the cache entry for a file.
func (c *Cache) Put(entry *Entry) error {
	query := `
		INSERT INTO files (path, size, mod_time, clip_id, title, artist, duration)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			clip_id = excluded.clip_id,
			title = excluded.title,
			artist = excluded.artist,
			duration = excluded.duration
	`

	_, err := c.db.Exec(query,
		entry.Path,
		entry.Size,
		entry.ModTime.Unix(),
		entry.ClipID,
		entry.Title,
		entry.Artist,
		entry.Duration,
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// UserTags returns the locally applied tags for a clip. Clips without a
// row report the zero value.
func (c *Cache) UserTags(clipID string) (UserTags, error) {
	var tags UserTags
	err := c.db.QueryRow(
		`SELECT liked, starred, trashed FROM user_tags WHERE clip_id = ?`,
		clipID,
	).Scan(&tags.Liked, &tags.Starred, &tags.Trashed)
	if err == sql.ErrNoRows {
		return UserTags{}, nil
	}
	if err != nil {
		return UserTags{}, fmt.Errorf("failed to scan user tags: %w", err)
	}
	return tags, nil
}

// SetUserTags stores or replaces the locally applied tags for a clip.
func (c *Cache) SetUserTags(clipID string, tags UserTags) error {
	query := `
		INSERT INTO user_tags (clip_id, liked, starred, trashed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(clip_id) DO UPDATE SET
			liked = excluded.liked,
			starred = excluded.starred,
			trashed = excluded.trashed
	`
	if _, err := c.db.Exec(query, clipID, tags.Liked, tags.Starred, tags.Trashed); err != nil {
		return fmt.Errorf("failed to store user tags: %w", err)
	}
	return nil
}

// AllUserTags returns the full overlay keyed by clip ID, for bulk
// application during a library scan.
func (c *Cache) AllUserTags() (map[string]UserTags, error) {
	rows, err := c.db.Query(`SELECT clip_id, liked, starred, trashed FROM user_tags`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]UserTags)
	for rows.Next() {
		var clipID string
		var t UserTags
		if err := rows.Scan(&clipID, &t.Liked, &t.Starred, &t.Trashed); err != nil {
			return nil, fmt.Errorf("failed to scan user tags: %w", err)
		}
		tags[clipID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tags, nil
}

// Prune removes cache rows for files that no longer exist on disk.
func (c *Cache) Prune(exists func(path string) bool) error {
	rows, err := c.db.Query(`SELECT path FROM files`)
	if err != nil {
		return fmt.Errorf("failed to query cache paths: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return fmt.Errorf("failed to scan cache path: %w", err)
		}
		if !exists(path) {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	for _, path := range stale {
		if _, err := c.db.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
			return fmt.Errorf("failed to prune cache entry: %w", err)
		}
	}

	return nil
}
