package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const timeLayout = time.RFC3339Nano

// HistoryEntry records one application of a filter tree to a table
type HistoryEntry struct {
	ID           int
	Schema       string
	Table        string
	Filter       string // encoded tree JSON
	Query        string // generated SQL
	AppliedAt    time.Time
	Duration     time.Duration
	RowsReturned int64
	Success      bool
	ErrorMessage string
}

// Store manages filter history persistence
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore creates a new history store. maxEntries of zero keeps everything.
func NewStore(path string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Add adds a new entry to history and prunes the oldest entries beyond the
// configured maximum
func (s *Store) Add(entry HistoryEntry) error {
	if entry.AppliedAt.IsZero() {
		entry.AppliedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO filter_history
		(schema_name, table_name, filter, query, applied_at, duration_ms, rows_returned, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Schema,
		entry.Table,
		entry.Filter,
		entry.Query,
		entry.AppliedAt.UTC().Format(timeLayout),
		entry.Duration.Milliseconds(),
		entry.RowsReturned,
		entry.Success,
		entry.ErrorMessage,
	)
	if err != nil {
		return err
	}

	if s.maxEntries > 0 {
		_, err = s.db.Exec(`
			DELETE FROM filter_history
			WHERE id NOT IN (SELECT id FROM filter_history ORDER BY id DESC LIMIT ?)`,
			s.maxEntries)
	}
	return err
}

// GetRecent retrieves the most recent history entries, newest first
func (s *Store) GetRecent(limit int) ([]HistoryEntry, error) {
	return s.query(`
		SELECT id, schema_name, table_name, filter, query, applied_at,
		       duration_ms, rows_returned, success, error_message
		FROM filter_history
		ORDER BY id DESC
		LIMIT ?`, limit)
}

// ForTable retrieves the most recent entries applied to schema.table
func (s *Store) ForTable(schema, table string, limit int) ([]HistoryEntry, error) {
	return s.query(`
		SELECT id, schema_name, table_name, filter, query, applied_at,
		       duration_ms, rows_returned, success, error_message
		FROM filter_history
		WHERE schema_name = ? AND table_name = ?
		ORDER BY id DESC
		LIMIT ?`, schema, table, limit)
}

// Search searches history by filter text
func (s *Store) Search(text string, limit int) ([]HistoryEntry, error) {
	return s.query(`
		SELECT id, schema_name, table_name, filter, query, applied_at,
		       duration_ms, rows_returned, success, error_message
		FROM filter_history
		WHERE filter LIKE ?
		ORDER BY id DESC
		LIMIT ?`, "%"+text+"%", limit)
}

func (s *Store) query(q string, args ...any) ([]HistoryEntry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var durationMs int64
		var appliedAt string

		err := rows.Scan(
			&e.ID,
			&e.Schema,
			&e.Table,
			&e.Filter,
			&e.Query,
			&appliedAt,
			&durationMs,
			&e.RowsReturned,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.AppliedAt, _ = time.Parse(timeLayout, appliedAt)

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
