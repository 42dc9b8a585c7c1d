// Package output writes extracted rows as TSV or JSON lines
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
)

// Formats
const (
	FormatTSV  = "tsv"
	FormatJSON = "json"
)

// Row is anything that renders to one value per column
type Row interface {
	Values() []string
}

// RowWriter writes rows under a fixed column list
type RowWriter interface {
	Write(row Row) error
	Count() int
	Close() error
}

// DefaultFileName returns the output file name for a task
func DefaultFileName(task, format string) string {
	if format == FormatJSON {
		return task + ".json"
	}
	return task + ".tsv"
}

// TSVWriter writes a header line followed by one tab-separated line per row
type TSVWriter struct {
	w       *csv.Writer
	columns int
	count   int
	closer  io.Closer
}

// NewTSVWriter writes the header immediately
func NewTSVWriter(w io.Writer, columns []string) (*TSVWriter, error) {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &TSVWriter{w: cw, columns: len(columns)}, nil
}

// Write writes one row
func (t *TSVWriter) Write(row Row) error {
	values := row.Values()
	if len(values) != t.columns {
		return fmt.Errorf("row has %d values, header has %d", len(values), t.columns)
	}
	if err := t.w.Write(values); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	t.count++
	return nil
}

// Count returns the number of rows written
func (t *TSVWriter) Count() int {
	return t.count
}

// Close flushes buffered rows and closes the underlying file if any
func (t *TSVWriter) Close() error {
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// JSONWriter writes one JSON object per line keyed by column name
type JSONWriter struct {
	w       *bufio.Writer
	columns []string
	count   int
	closer  io.Closer
}

// NewJSONWriter creates a JSON lines writer
func NewJSONWriter(w io.Writer, columns []string) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w), columns: columns}
}

// Write writes one row
func (j *JSONWriter) Write(row Row) error {
	values := row.Values()
	if len(values) != len(j.columns) {
		return fmt.Errorf("row has %d values, header has %d", len(values), len(j.columns))
	}
	obj := make(map[string]string, len(values))
	for i, col := range j.columns {
		obj[col] = values[i]
	}
	data, err := sonic.ConfigStd.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}
	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	j.count++
	return nil
}

// Count returns the number of rows written
func (j *JSONWriter) Count() int {
	return j.count
}

// Close flushes buffered rows and closes the underlying file if any
func (j *JSONWriter) Close() error {
	if err := j.w.Flush(); err != nil {
		return fmt.Errorf("flush rows: %w", err)
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// Create opens path (creating parent directories) and returns a writer
// for the format
func Create(path, format string, columns []string) (RowWriter, error) {
	if format == "" {
		format = FormatTSV
	}
	if format != FormatTSV && format != FormatJSON {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	if format == FormatJSON {
		jw := NewJSONWriter(f, columns)
		jw.closer = f
		return jw, nil
	}
	tw, err := NewTSVWriter(f, columns)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	tw.closer = f
	return tw, nil
}
