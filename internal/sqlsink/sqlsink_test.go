package sqlsink

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifier(t *testing.T) {
	tests := map[string]string{
		"author":        "author",
		"Speech type":   "speech_type",
		"MATTR-100":     "mattr_100",
		"  rank mean ":  "rank_mean",
		"500":           "c_500",
		"???":           "c_",
		"parlasf.rows":  "parlasf_rows",
		"stílfærsla(já)": "st_lf_rsla_j",
	}
	for in, want := range tests {
		assert.Equal(t, want, Identifier(in), in)
	}
}

func TestColumnNames_Repeats(t *testing.T) {
	assert.Equal(t, []string{"text", "word", "text_2", "text_3"},
		ColumnNames([]string{"text", "word", "Text", "TEXT"}))
}

func TestCreateTableSQL(t *testing.T) {
	e := New(nil, "parlasf rows", []string{"author", "freq"}, 0)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS `parlasf_rows` (\n"+
		"  `id` BIGINT AUTO_INCREMENT PRIMARY KEY,\n"+
		"  `author` TEXT,\n"+
		"  `freq` TEXT\n"+
		") DEFAULT CHARSET=utf8mb4", e.CreateTableSQL())
	assert.Equal(t, DefaultBatchSize, e.batchSize)
}

func TestInsertSQL(t *testing.T) {
	e := New(nil, "rows", []string{"a", "b", "c"}, 10)
	assert.Equal(t, "INSERT INTO `rows` (`a`, `b`, `c`) VALUES (?, ?, ?)", e.InsertSQL(1))
	assert.Equal(t, "INSERT INTO `rows` (`a`, `b`, `c`) VALUES (?, ?, ?), (?, ?, ?)", e.InsertSQL(2))
}

func TestNew_BatchSizeWithinPlaceholderLimit(t *testing.T) {
	columns := make([]string, 26)
	for i := range columns {
		columns[i] = fmt.Sprintf("col%d", i)
	}

	e := New(nil, "rows", columns, 10000)
	assert.Equal(t, 65535/26, e.batchSize)
	assert.LessOrEqual(t, strings.Count(e.InsertSQL(e.batchSize), "?"), 65535)

	e = New(nil, "rows", columns, 100)
	assert.Equal(t, 100, e.batchSize)

	e = New(nil, "rows", nil, 10000)
	assert.Equal(t, 10000, e.batchSize)
}

func TestAdd_ColumnMismatch(t *testing.T) {
	e := New(nil, "rows", []string{"a", "b"}, 10)
	err := e.Add(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "row has 1 values")
	assert.Empty(t, e.pending)
}

func TestAdd_QueuesBelowBatchSize(t *testing.T) {
	e := New(nil, "rows", []string{"a"}, 3)
	require.NoError(t, e.Add(context.Background(), []string{"1"}))
	require.NoError(t, e.Add(context.Background(), []string{"2"}))
	assert.Len(t, e.pending, 2)
	assert.Equal(t, 0, e.Written())
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, err := Open(context.Background(), "not a dsn", "rows", []string{"a"}, 1)
	assert.ErrorContains(t, err, "parse mysql dsn")
}

func TestOpen_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Open(ctx, "user:pw@tcp(127.0.0.1:1)/corpus?timeout=500ms", "rows", []string{"a"}, 1)
	assert.Error(t, err)
}
