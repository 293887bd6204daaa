package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/depsentry/depsentry/domain"
)

// SQLiteCache memoizes scan results in a local SQLite database so results
// survive process restarts.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (creating if needed) the cache database at path and
// applies migrations.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	cache := &SQLiteCache{db: db, now: time.Now}
	if err := cache.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	return cache, nil
}

func (c *SQLiteCache) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS scan_results (
		key TEXT PRIMARY KEY,
		result TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(query)
	return err
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Get returns the cached result for key, if present and not expired.
func (c *SQLiteCache) Get(key string) (*domain.ScanResult, bool) {
	var (
		payload   string
		expiresAt int64
	)
	query := `SELECT result, expires_at FROM scan_results WHERE key = ?`
	err := c.db.QueryRow(query, key).Scan(&payload, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warnf("[cache] lookup failed for %s: %v", key, err)
		}
		return nil, false
	}

	if c.now().Unix() >= expiresAt {
		_, _ = c.db.Exec(`DELETE FROM scan_results WHERE key = ?`, key)
		return nil, false
	}

	var result domain.ScanResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		logger.Warnf("[cache] dropping undecodable entry %s: %v", key, err)
		_, _ = c.db.Exec(`DELETE FROM scan_results WHERE key = ?`, key)
		return nil, false
	}
	return &result, true
}

// Set stores a result under key for ttl. Entries with a non-positive ttl
// are not stored.
func (c *SQLiteCache) Set(key string, result *domain.ScanResult, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		logger.Warnf("[cache] failed to encode result for %s: %v", key, err)
		return
	}

	query := `
	INSERT INTO scan_results (key, result, expires_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET result = excluded.result, expires_at = excluded.expires_at
	`
	if _, err := c.db.Exec(query, key, string(payload), c.now().Add(ttl).Unix()); err != nil {
		logger.Warnf("[cache] failed to store result for %s: %v", key, err)
	}
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *SQLiteCache) Sweep() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM scan_results WHERE expires_at <= ?`, c.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep cache: %w", err)
	}
	dropped, _ := res.RowsAffected()
	return dropped, nil
}
