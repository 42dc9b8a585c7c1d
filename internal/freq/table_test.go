package freq

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoarseKey(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"nken", "nk"},
		{"nveo-s", "nv"},
		{"sþghen", "s"},
		{"fphen", "f"},
		{"n", "n"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, CoarseKey(tt.tag))
		})
	}
}

func TestLookup(t *testing.T) {
	table := Table{
		"hestur": {"nk": {1200, 40}},
		"segja":  {"s": {9000, 3}},
	}

	f, r := table.Lookup("hestur", "nken")
	assert.Equal(t, 1200, f)
	assert.Equal(t, 40, r)

	f, r = table.Lookup("segja", "sþghen")
	assert.Equal(t, 9000, f)
	assert.Equal(t, 3, r)
}

func TestLookup_Misses(t *testing.T) {
	table := Table{"hestur": {"nk": {1200, 40}}}

	tests := []struct {
		name  string
		lemma string
		tag   string
	}{
		{"absent lemma", "köttur", "nken"},
		{"absent tag", "hestur", "nveo"},
		{"empty tag", "hestur", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, r := table.Lookup(tt.lemma, tt.tag)
			assert.Zero(t, f)
			assert.Zero(t, r)
		})
	}
}

func TestReadTSV_RankFollowsRowOrder(t *testing.T) {
	input := "vera\ts\t500\nog\tc\t450\nhestur\tnk\t12\n"

	table, err := ReadTSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 1, table.Rank("vera", "sfg3en"))
	assert.Equal(t, 2, table.Rank("og", "c"))
	assert.Equal(t, 3, table.Rank("hestur", "nken"))
	assert.Equal(t, 12, table.Freq("hestur", "nkeo"))
}

func TestReadTSV_BadFrequency(t *testing.T) {
	_, err := ReadTSV(strings.NewReader("vera\ts\tmany\n"))
	assert.Error(t, err)

	_, err = ReadTSV(strings.NewReader("vera\ts\n"))
	assert.Error(t, err)
}

func TestJSONRoundTripKeepsArrayShape(t *testing.T) {
	table := Table{"vera": {"s": {500, 1}}}

	data, err := table.EncodeJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"vera":{"s":[500,1]}}`, string(data))
}

func TestLoad_TSVIsCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freq.tsv")
	require.NoError(t, os.WriteFile(path, []byte("vera\ts\t500\n"), 0644))

	c := cache.NewMemoryCache[[]byte](time.Hour, time.Minute)

	table, err := Load(path, c, "1")
	require.NoError(t, err)
	assert.Equal(t, 500, table.Freq("vera", "sfg3en"))

	// Remove the source: the second load must come from the cache.
	require.NoError(t, os.Remove(path))
	table, err = Load(path, c, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Rank("vera", "sng"))
}

func TestLoad_EditedTSVReplacesCachedTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "freq.tsv")
	require.NoError(t, os.WriteFile(path, []byte("vera\ts\t500\n"), 0644))

	c := cache.NewLayeredCache(time.Hour, filepath.Join(dir, "cache"), 30*24*time.Hour)
	_, err := Load(path, c, "2024-01-01T00:00:00Z")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("vera\ts\t500\nhafa\ts\t900\n"), 0644))
	table, err := Load(path, c, "2024-03-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Rank("hafa", "sng"))
	assert.Equal(t, 900, table.Freq("hafa", "sng"))

	// a later run with the new list version reads the new conversion
	again := cache.NewLayeredCache(time.Hour, filepath.Join(dir, "cache"), 30*24*time.Hour)
	require.NoError(t, os.Remove(path))
	table, err = Load(path, again, "2024-03-01T00:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 900, table.Freq("hafa", "sng"))
}

func TestBuildFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte("a\tc\t10\nb\tnk\t5\n"), 0644))

	_, err := BuildFile(in, out)
	require.NoError(t, err)

	table, err := Load(out, nil, "")
	require.NoError(t, err)
	f, r := table.Lookup("b", "nkeo")
	assert.Equal(t, 5, f)
	assert.Equal(t, 2, r)
}
