package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite stores rows of one table as JSON cell arrays. The optional row key is
// unique, so appends keyed by the same values are idempotent.
type SQLite struct {
	db    *sql.DB
	table string
}

var (
	_ Sink         = (*SQLite)(nil)
	_ HeaderWriter = (*SQLite)(nil)
)

// NewSQLite opens (or creates) the database at path and ensures the table exists.
func NewSQLite(path, table string) (*SQLite, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		row_num    INTEGER PRIMARY KEY AUTOINCREMENT,
		row_key    TEXT UNIQUE,
		cells      TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, table)
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating %s table: %w", table, err)
	}

	return &SQLite{db: db, table: table}, nil
}

func (s *SQLite) ReadAll(ctx context.Context) ([][]any, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT cells FROM %q ORDER BY row_num`, s.table))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSink, s.table, err)
	}
	defer rows.Close()

	var result [][]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: scanning %s: %v", ErrSink, s.table, err)
		}

		var cells []any
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("%w: decoding row of %s: %v", ErrSink, s.table, err)
		}
		result = append(result, cells)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrSink, s.table, err)
	}

	return result, nil
}

func (s *SQLite) Append(ctx context.Context, row []any, keyColumns []int) (AppendResult, error) {
	cells, err := json.Marshal(CleanRow(row))
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: encoding row: %v", ErrSink, err)
	}

	var key sql.NullString
	if k, ok := rowKey(row, keyColumns); ok {
		key = sql.NullString{String: k, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT OR IGNORE INTO %q (row_key, cells) VALUES (?, ?)`, s.table),
		key, string(cells),
	)
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: appending to %s: %v", ErrSink, s.table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return AppendResult{}, fmt.Errorf("%w: appending to %s: %v", ErrSink, s.table, err)
	}

	if affected == 0 {
		return AppendResult{Accepted: false, Message: duplicateMessage(key.String)}, nil
	}

	return AppendResult{Accepted: true, Message: fmt.Sprintf("appended to %s", s.table)}, nil
}

// EnsureHeader writes header as the first row of an empty table.
func (s *SQLite) EnsureHeader(ctx context.Context, header []string) error {
	var count int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, s.table)).Scan(&count); err != nil {
		return fmt.Errorf("%w: counting rows of %s: %v", ErrSink, s.table, err)
	}
	if count > 0 {
		return nil
	}

	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}

	_, err := s.Append(ctx, row, nil)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
