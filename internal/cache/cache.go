// Package cache is a file-backed memoization cache: one JSON file per key,
// expiry based on entry creation time, atomic replacement on write.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry wraps a cached payload with its creation timestamp. The timestamp,
// not file mtime, decides freshness, so entries survive copies and backups.
type Entry[T any] struct {
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache stores entries as <sanitized key>.json under a single directory.
type Cache struct {
	dir        string
	defaultTTL time.Duration
	log        zerolog.Logger
}

// New opens (creating if needed) a cache directory.
func New(dir string, defaultTTL time.Duration, log zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, defaultTTL: defaultTTL, log: log}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// GetOrCreate returns the cached payload for key if a fresh, parseable entry
// exists; otherwise it invokes produce, stores the result and returns it.
// ttl <= 0 uses the cache default. A corrupt entry is deleted and treated as
// a miss, never surfaced as an error. Failure to persist the produced value
// is logged but does not fail the call.
func GetOrCreate[T any](c *Cache, key string, ttl time.Duration, produce func() (T, error)) (T, error) {
	if v, ok := Get[T](c, key, ttl); ok {
		return v, nil
	}

	v, err := produce()
	if err != nil {
		var zero T
		return zero, err
	}
	if err := Put(c, key, v); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, nil
}

// Get returns the cached payload for key when present, fresh and parseable.
func Get[T any](c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	path := c.filePath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, false
	}

	var e Entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt entry: remove it so the next write starts clean.
		c.log.Warn().Str("key", key).Msg("removing corrupt cache entry")
		os.Remove(path)
		return zero, false
	}
	if time.Since(e.CreatedAt) > ttl {
		return zero, false
	}
	return e.Data, true
}

// Put writes value under key, replacing any previous entry atomically: the
// entry is serialized to a uniquely-named temp file in the cache directory
// and renamed over the destination, so a reader never sees a partial write.
func Put[T any](c *Cache, key string, value T) error {
	e := Entry[T]{Data: value, CreatedAt: time.Now().UTC()}
	raw, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, sanitizeKey(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.filePath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache entry: %w", err)
	}
	return nil
}

// Remove deletes the entry for key, if any.
func (c *Cache) Remove(key string) error {
	err := os.Remove(c.filePath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ClearAll removes every cached entry unconditionally.
func (c *Cache) ClearAll() error {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// ClearExpired removes entries older than the default TTL, plus any file
// that no longer parses. Returns the number of files removed.
func (c *Cache) ClearExpired() int {
	files, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0
	}

	removed := 0
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		var meta struct {
			CreatedAt time.Time `json:"createdAt"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil || time.Since(meta.CreatedAt) > c.defaultTTL {
			if os.Remove(f) == nil {
				removed++
			}
		}
	}
	return removed
}

// filePath maps a logical key onto a file inside the cache directory.
func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, sanitizeKey(key)+".json")
}

// sanitizeKey strips characters that are unsafe in file names. Keys here are
// human-composed identifiers (system names, radii, market ids), so a plain
// character substitution is collision-safe enough.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}
