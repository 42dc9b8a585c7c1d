// Package sqlsink exports extracted rows to a MySQL table
package sqlsink

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of rows sent per INSERT
const DefaultBatchSize = 500

// maxPlaceholders is the MySQL limit of parameters in one prepared statement
const maxPlaceholders = 65535

var (
	nonIdent = regexp.MustCompile(`[^a-z0-9_]+`)
)

// Exporter buffers rows and writes them with multi-row INSERTs
type Exporter struct {
	db        *sql.DB
	table     string
	columns   []string
	batchSize int
	pending   [][]string
	written   int
}

// Open connects to the database described by dsn
func Open(ctx context.Context, dsn, table string, columns []string, batchSize int) (*Exporter, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s: %w", cfg.Addr, err)
	}
	log.Info().Str("addr", cfg.Addr).Str("db", cfg.DBName).Str("table", table).Msg("exporting rows to mysql")
	return New(db, table, columns, batchSize), nil
}

// New wraps an open database handle. The batch size is capped so one
// INSERT stays within the placeholder limit.
func New(db *sql.DB, table string, columns []string, batchSize int) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if len(columns) > 0 {
		if limit := maxPlaceholders / len(columns); batchSize > limit {
			log.Warn().Int("batch_size", batchSize).Int("limit", limit).Msg("mysql batch size capped")
			batchSize = max(limit, 1)
		}
	}
	return &Exporter{
		db:        db,
		table:     Identifier(table),
		columns:   ColumnNames(columns),
		batchSize: batchSize,
	}
}

// Identifier turns a name into a lower-case SQL identifier of letters,
// digits and underscores
func Identifier(name string) string {
	id := strings.Trim(nonIdent.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if id == "" || (id[0] >= '0' && id[0] <= '9') {
		id = "c_" + id
	}
	return id
}

// ColumnNames converts column labels to identifiers, numbering repeats
func ColumnNames(columns []string) []string {
	seen := make(map[string]int, len(columns))
	names := make([]string, len(columns))
	for i, c := range columns {
		id := Identifier(c)
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s_%d", id, n)
		}
		names[i] = id
	}
	return names
}

// CreateTableSQL returns the statement creating the export table
func (e *Exporter) CreateTableSQL() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE IF NOT EXISTS `%s` (\n  `id` BIGINT AUTO_INCREMENT PRIMARY KEY", e.table)
	for _, c := range e.columns {
		fmt.Fprintf(&sb, ",\n  `%s` TEXT", c)
	}
	sb.WriteString("\n) DEFAULT CHARSET=utf8mb4")
	return sb.String()
}

// InsertSQL returns a multi-row INSERT with placeholders for n rows
func (e *Exporter) InsertSQL(n int) string {
	quoted := make([]string, len(e.columns))
	for i, c := range e.columns {
		quoted[i] = "`" + c + "`"
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(e.columns)), ", ") + ")"
	tuples := make([]string, n)
	for i := range tuples {
		tuples[i] = tuple
	}
	return fmt.Sprintf("INSERT INTO `%s` (%s) VALUES %s",
		e.table, strings.Join(quoted, ", "), strings.Join(tuples, ", "))
}

// EnsureTable creates the export table when missing
func (e *Exporter) EnsureTable(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, e.CreateTableSQL()); err != nil {
		return fmt.Errorf("create table %s: %w", e.table, err)
	}
	return nil
}

// Add queues a row, sending a batch when it is full
func (e *Exporter) Add(ctx context.Context, values []string) error {
	if len(values) != len(e.columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(e.columns))
	}
	e.pending = append(e.pending, values)
	if len(e.pending) >= e.batchSize {
		return e.Flush(ctx)
	}
	return nil
}

// Flush sends queued rows in one transaction
func (e *Exporter) Flush(ctx context.Context) error {
	if len(e.pending) == 0 {
		return nil
	}

	args := make([]any, 0, len(e.pending)*len(e.columns))
	for _, row := range e.pending {
		for _, v := range row {
			args = append(args, v)
		}
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin export: %w", err)
	}
	if _, err := tx.ExecContext(ctx, e.InsertSQL(len(e.pending)), args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert rows: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit export: %w", err)
	}

	e.written += len(e.pending)
	e.pending = e.pending[:0]
	return nil
}

// Written returns the number of rows committed
func (e *Exporter) Written() int {
	return e.written
}

// Close flushes remaining rows and closes the database handle
func (e *Exporter) Close(ctx context.Context) error {
	flushErr := e.Flush(ctx)
	if err := e.db.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}
