package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/parlasf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("freq:/data/giga.tsv")
	b := CacheKey("freq:/data/other.tsv")

	assert.True(t, strings.HasPrefix(a, "parlasf:v2:"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey("freq:/data/giga.tsv"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache[[]byte](time.Hour, time.Minute)

	require.NoError(t, c.Set("k", "", []byte("v"), 0))
	val, ok := c.Get("k", "")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k", "")
	assert.False(t, ok)
}

func TestMemoryCache_VersionMismatchEvicts(t *testing.T) {
	c := NewMemoryCache[int](0, time.Minute)
	require.NoError(t, c.Set("k", "2024-01-01", 7, 0))

	_, ok := c.Get("k", "2024-02-01")
	assert.False(t, ok)

	// the outdated entry is gone even for its own version
	_, ok = c.Get("k", "2024-01-01")
	assert.False(t, ok)
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	require.NoError(t, c.Set("fresh", "", []byte("1"), 0))
	require.NoError(t, c.Set("stale", "", []byte("2"), -time.Second))

	val, ok := c.Get("fresh", "")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), val)

	_, ok = c.Get("stale", "")
	assert.False(t, ok)
}

func TestDiskCache_OutdatedSourceDropped(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 30*24*time.Hour)
	key := CacheKey("freq:/data/giga.tsv")

	require.NoError(t, c.Set(key, "1700000000", []byte(`{"a":1}`), 0))
	_, err := os.Stat(c.path(key))
	require.NoError(t, err)

	// the frequency list was edited after the entry was written
	_, ok := c.Get(key, "1700000500")
	assert.False(t, ok)

	_, err = os.Stat(c.path(key))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiskCache_CorruptEntryDropped(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, os.WriteFile(c.path("k"), []byte("{not json"), 0644))

	_, ok := c.Get("k", "")
	assert.False(t, ok)
	_, err := os.Stat(c.path("k"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiskCache_ClearKeepsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, c.Set(CacheKey("page:x"), "", []byte("<html/>"), 0))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644))

	require.NoError(t, c.Clear())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "notes.txt", files[0].Name())
}

func TestDiskCache_ClearMissingDir(t *testing.T) {
	c := NewDiskCache(filepath.Join(t.TempDir(), "never-created"), time.Hour)
	assert.NoError(t, c.Clear())
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewLayeredCache(time.Hour, dir, time.Hour)
	require.NoError(t, first.Set("k", "v1", []byte("table"), 0))

	// A new process only shares the disk layer.
	second := NewLayeredCache(time.Hour, dir, time.Hour)
	val, ok := second.Get("k", "v1")
	require.True(t, ok)
	assert.Equal(t, []byte("table"), val)

	val, ok = second.memory.Get("k", "v1")
	assert.True(t, ok)
	assert.Equal(t, []byte("table"), val)
}

func TestLayeredCache_NewerVersionFromDisk(t *testing.T) {
	dir := t.TempDir()
	stale := NewLayeredCache(time.Hour, dir, time.Hour)
	require.NoError(t, stale.Set("k", "v1", []byte("old"), 0))

	fresh := NewLayeredCache(time.Hour, dir, time.Hour)
	require.NoError(t, fresh.Set("k", "v2", []byte("new"), 0))

	val, ok := stale.Get("k", "v2")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), val)
}

func TestLayeredCache_DeleteMissing(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	assert.NoError(t, c.Delete("never-set"))
}

func TestLayeredCache_Clear(t *testing.T) {
	c := NewLayeredCache(time.Hour, t.TempDir(), time.Hour)
	require.NoError(t, c.Set("k", "", []byte("v"), 0))

	require.NoError(t, c.Clear())

	_, ok := c.Get("k", "")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	assert.Nil(t, New(model.CacheConfig{Enabled: false}))

	c := New(model.CacheConfig{Enabled: true, Dir: t.TempDir(), MemoryTTL: time.Minute, DiskTTL: time.Hour})
	layered, ok := c.(*LayeredCache)
	require.True(t, ok)
	_, isDisk := layered.persistent.(*DiskCache)
	assert.True(t, isDisk)

	c = New(model.CacheConfig{Enabled: true, RedisAddr: "127.0.0.1:6379", MemoryTTL: time.Minute})
	layered, ok = c.(*LayeredCache)
	require.True(t, ok)
	_, isRedis := layered.persistent.(*RedisCache)
	assert.True(t, isRedis)
}
