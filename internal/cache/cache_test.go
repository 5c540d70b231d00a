package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(t.TempDir(), ttl, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestGetOrCreate_ProducerCalledOnceWithinTTL(t *testing.T) {
	c := newTestCache(t, time.Hour)

	calls := 0
	produce := func() (string, error) {
		calls++
		return "payload", nil
	}

	v, err := GetOrCreate(c, "key", 0, produce)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)

	v, err = GetOrCreate(c, "key", 0, produce)
	require.NoError(t, err)
	assert.Equal(t, "payload", v)
	assert.Equal(t, 1, calls, "second call within TTL must hit the cache")
}

func TestGetOrCreate_ProducerCalledAgainPastTTL(t *testing.T) {
	c := newTestCache(t, time.Hour)

	calls := 0
	produce := func() (int, error) {
		calls++
		return calls, nil
	}

	_, err := GetOrCreate(c, "key", time.Hour, produce)
	require.NoError(t, err)

	// Age the entry past its TTL by rewriting its timestamp.
	path := c.filePath("key")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	old := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339Nano)
	aged := []byte(replaceCreatedAt(t, string(raw), old))
	require.NoError(t, os.WriteFile(path, aged, 0o644))

	v, err := GetOrCreate(c, "key", time.Hour, produce)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "expired entry must re-invoke the producer")
	assert.Equal(t, 2, v)
}

func TestRoundTrip_NestedStructures(t *testing.T) {
	c := newTestCache(t, time.Hour)

	type inner struct {
		Names  []string       `json:"names"`
		Counts map[string]int `json:"counts"`
	}
	type payload struct {
		ID    int     `json:"id"`
		Items []inner `json:"items"`
	}

	want := payload{
		ID: 7,
		Items: []inner{
			{Names: []string{"a", "b"}, Counts: map[string]int{"a": 1}},
			{Names: nil, Counts: map[string]int{}},
		},
	}
	require.NoError(t, Put(c, "nested", want))

	got, ok := Get[payload](c, "nested", time.Hour)
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Items[0], got.Items[0])
	assert.Equal(t, want.Items[1].Names, got.Items[1].Names)
}

func TestCorruptEntry_DeletedAndTreatedAsMiss(t *testing.T) {
	c := newTestCache(t, time.Hour)

	path := c.filePath("bad")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	calls := 0
	v, err := GetOrCreate(c, "bad", 0, func() (string, error) {
		calls++
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.Equal(t, 1, calls)

	// The corrupt file must be gone (replaced by the fresh entry).
	got, ok := Get[string](c, "bad", time.Hour)
	require.True(t, ok)
	assert.Equal(t, "fresh", got)
}

func TestClearAll(t *testing.T) {
	c := newTestCache(t, time.Hour)

	require.NoError(t, Put(c, "a", 1))
	require.NoError(t, Put(c, "b", 2))
	require.NoError(t, c.ClearAll())

	_, ok := Get[int](c, "a", time.Hour)
	assert.False(t, ok)
	_, ok = Get[int](c, "b", time.Hour)
	assert.False(t, ok)
}

func TestClearExpired(t *testing.T) {
	c := newTestCache(t, time.Hour)

	require.NoError(t, Put(c, "fresh", 1))
	require.NoError(t, Put(c, "stale", 2))

	path := c.filePath("stale")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	old := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339Nano)
	require.NoError(t, os.WriteFile(path, []byte(replaceCreatedAt(t, string(raw), old)), 0o644))

	// One garbage file as well.
	require.NoError(t, os.WriteFile(filepath.Join(c.Dir(), "junk.json"), []byte("?"), 0o644))

	removed := c.ClearExpired()
	assert.Equal(t, 2, removed)

	_, ok := Get[int](c, "fresh", time.Hour)
	assert.True(t, ok)
	_, ok = Get[int](c, "stale", time.Hour)
	assert.False(t, ok)
}

func TestSanitizeKey_UnsafeCharacters(t *testing.T) {
	c := newTestCache(t, time.Hour)

	key := `Search_Sol system/10:ly\*?`
	require.NoError(t, Put(c, key, "v"))

	got, ok := Get[string](c, key, time.Hour)
	require.True(t, ok)
	assert.Equal(t, "v", got)

	// Distinct keys must land in distinct files.
	require.NoError(t, Put(c, "Search_Sol_10", "other"))
	got, ok = Get[string](c, key, time.Hour)
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

// replaceCreatedAt rewrites the createdAt field of a serialized entry.
func replaceCreatedAt(t *testing.T, raw, stamp string) string {
	t.Helper()
	marker := `"createdAt": "`
	start := strings.Index(raw, marker)
	require.GreaterOrEqual(t, start, 0)
	start += len(marker)
	end := strings.Index(raw[start:], `"`)
	require.GreaterOrEqual(t, end, 0)
	return raw[:start] + stamp + raw[start+end:]
}
