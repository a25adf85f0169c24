package feed

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

// SQLiteCache persists query results on disk, so a restarted client can render
// the last known data before the network answers.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS query_cache (
		k TEXT PRIMARY KEY,
		v BLOB NOT NULL,
		expires_at_unixms INTEGER NOT NULL DEFAULT 0,
		updated_at_unixms INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return &SQLiteCache{db: db, now: time.Now}, nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		v       []byte
		expires int64
	)
	err := c.db.QueryRowContext(ctx, `SELECT v, expires_at_unixms FROM query_cache WHERE k = ?`, key).Scan(&v, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	// Expired rows stay on disk for Peek.
	if expires > 0 && c.now().UnixMilli() >= expires {
		return nil, ErrCacheMiss
	}
	return v, nil
}

// Peek returns the stored value even after it expired.
func (c *SQLiteCache) Peek(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := c.db.QueryRowContext(ctx, `SELECT v FROM query_cache WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	now := c.now()
	var expires int64
	if ttl > 0 {
		expires = now.Add(ttl).UnixMilli()
	}
	_, err := c.db.ExecContext(ctx, `INSERT INTO query_cache (k, v, expires_at_unixms, updated_at_unixms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, expires_at_unixms = excluded.expires_at_unixms, updated_at_unixms = excluded.updated_at_unixms`,
		key, val, expires, now.UnixMilli())
	return err
}

func (c *SQLiteCache) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM query_cache WHERE k = ?`, k); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLiteCache) Close() error { return c.db.Close() }
