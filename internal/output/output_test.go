package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type values []string

func (v values) Values() []string { return v }

func TestTSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewTSVWriter(&buf, []string{"author", "text", "freq"})
	require.NoError(t, err)

	require.NoError(t, w.Write(values{"ÁrniPál", "þá hefur verið", "12"}))
	require.NoError(t, w.Write(values{"KatrJak", "", "0"}))
	require.NoError(t, w.Close())

	assert.Equal(t, "author\ttext\tfreq\nÁrniPál\tþá hefur verið\t12\nKatrJak\t\t0\n", buf.String())
	assert.Equal(t, 2, w.Count())
}

func TestTSVWriter_ColumnMismatch(t *testing.T) {
	w, err := NewTSVWriter(&bytes.Buffer{}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Error(t, w.Write(values{"only one"}))
	assert.Equal(t, 0, w.Count())
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, []string{"word", "plosive"})
	require.NoError(t, w.Write(values{"tapa", "p"}))
	require.NoError(t, w.Write(values{"\"quoted\"", "t"}))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]string
	require.NoError(t, sonic.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, map[string]string{"word": "tapa", "plosive": "p"}, first)

	var second map[string]string
	require.NoError(t, sonic.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "\"quoted\"", second["word"])
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultFileName("hardspeech", FormatTSV))

	w, err := Create(path, FormatTSV, []string{"x"})
	require.NoError(t, err)
	require.NoError(t, w.Write(values{"1"}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(data))

	_, err = Create(filepath.Join(dir, "out.xml"), "xml", []string{"x"})
	assert.ErrorContains(t, err, "unknown output format")
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "sf_main.tsv", DefaultFileName("sf_main", FormatTSV))
	assert.Equal(t, "sf_main.json", DefaultFileName("sf_main", FormatJSON))
	assert.Equal(t, "sf_main.tsv", DefaultFileName("sf_main", ""))
}
