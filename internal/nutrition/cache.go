package nutrition

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Cache stores lookup results in a local SQLite database.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// OpenCache opens (or creates) the cache database at path.
func OpenCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS food_lookups (
		food       TEXT NOT NULL,
		count      INTEGER NOT NULL,
		facts      TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		PRIMARY KEY (food, count)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache table: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns cached facts that are younger than the TTL.
func (c *Cache) Get(ctx context.Context, name string, count int) ([]Facts, bool, error) {
	var raw string
	var fetchedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT facts, fetched_at FROM food_lookups WHERE food = ? AND count = ?`,
		cacheKey(name), count,
	).Scan(&raw, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	var facts []Facts
	if err := json.Unmarshal([]byte(raw), &facts); err != nil {
		return nil, false, fmt.Errorf("decoding cached facts: %w", err)
	}
	return facts, true, nil
}

// Put stores facts for name and count, replacing any previous entry.
func (c *Cache) Put(ctx context.Context, name string, count int, facts []Facts) error {
	raw, err := json.Marshal(facts)
	if err != nil {
		return fmt.Errorf("encoding facts: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO food_lookups (food, count, facts, fetched_at) VALUES (?, ?, ?, ?)`,
		cacheKey(name), count, string(raw), c.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Prune deletes entries older than the TTL and returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM food_lookups WHERE fetched_at < ?`,
		c.now().Add(-c.ttl).Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// CachedLookup serves lookups from the cache and falls back to the wrapped
// Lookuper on a miss. Cache failures are logged, never returned.
type CachedLookup struct {
	next  Lookuper
	cache *Cache
	log   *slog.Logger
}

// NewCachedLookup wraps next with cache.
func NewCachedLookup(next Lookuper, cache *Cache, log *slog.Logger) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, log: log}
}

// Lookup implements Lookuper.
func (l *CachedLookup) Lookup(ctx context.Context, name string, count int) ([]Facts, error) {
	count = clampCount(count)

	facts, ok, err := l.cache.Get(ctx, name, count)
	if err != nil {
		l.log.Warn("food cache read failed", "food", name, "error", err)
	}
	if ok {
		return facts, nil
	}

	facts, err = l.next.Lookup(ctx, name, count)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Put(ctx, name, count, facts); err != nil {
		l.log.Warn("food cache write failed", "food", name, "error", err)
	}
	return facts, nil
}
