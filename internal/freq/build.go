package freq

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/parlasf/internal/cache"
	"github.com/rs/zerolog/log"
)

// ReadTSV builds a table from "lemma<TAB>tag<TAB>freq" rows.
// The rank of a row is its 1-based position in the input, so the list is
// expected to be sorted by descending frequency.
func ReadTSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	table := make(Table)
	row := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frequency row %d: %w", row+1, err)
		}
		row++
		if len(rec) < 3 {
			return nil, fmt.Errorf("frequency row %d: expected 3 columns, got %d", row, len(rec))
		}
		f, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("frequency row %d: %w", row, err)
		}
		table.Add(rec[0], rec[1], f, row)
	}
	return table, nil
}

// BuildFile converts a frequency TSV into the JSON form
func BuildFile(tsvPath, jsonPath string) (Table, error) {
	f, err := os.Open(tsvPath)
	if err != nil {
		return nil, fmt.Errorf("open frequency list: %w", err)
	}
	defer f.Close()

	table, err := ReadTSV(f)
	if err != nil {
		return nil, err
	}
	if err := table.WriteJSON(jsonPath); err != nil {
		return nil, err
	}
	return table, nil
}

// Load reads a table from either a JSON file or a raw TSV list.
// A converted TSV is kept in c under its path, stamped with the file
// modification time, so the conversion runs once per list version and an
// edited list replaces its stale conversion.
func Load(path string, c cache.Cache, mtime string) (Table, error) {
	if !strings.EqualFold(filepath.Ext(path), ".tsv") {
		return LoadJSON(path)
	}

	key := cache.CacheKey("freq:" + path)
	if c != nil {
		if data, ok := c.Get(key, mtime); ok {
			table, err := DecodeJSON(data)
			if err == nil {
				log.Debug().Str("file", path).Msg("frequency table loaded from cache")
				return table, nil
			}
			log.Warn().Err(err).Str("file", path).Msg("dropping corrupt cached frequency table")
			_ = c.Delete(key)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frequency list: %w", err)
	}
	defer f.Close()

	table, err := ReadTSV(f)
	if err != nil {
		return nil, err
	}

	if c != nil {
		data, err := table.EncodeJSON()
		if err == nil {
			err = c.Set(key, mtime, data, 0)
		}
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("cannot cache frequency table")
		}
	}
	return table, nil
}
