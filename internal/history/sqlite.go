package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/pnc/foundation/core/error"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// NewSQLiteStore opens (and if needed creates) the history database
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dbError(err, "failed to create history directory", "history.Open").
				WithDetail("path", dir)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open history database", "history.Open")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize history schema", "history.Open").
			WithDetail("path", cfg.Path)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		input TEXT NOT NULL,
		ast TEXT NOT NULL,
		value INTEGER NOT NULL,
		ok INTEGER NOT NULL,
		error TEXT,
		diagnostics TEXT,
		duration_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_timestamp ON evaluations(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_evaluations_source ON evaluations(source);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a new entry
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepare(entry)

	var diagnostics []byte
	if len(entry.Diagnostics) > 0 {
		diagnostics, _ = json.Marshal(entry.Diagnostics)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evaluations (id, timestamp, source, input, ast, value, ok, error, diagnostics, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Timestamp.UTC(), string(entry.Source), entry.Input, entry.AST,
		entry.Value, entry.OK, nullString(entry.Error), nullString(string(diagnostics)),
		int64(entry.Duration))
	if err != nil {
		return dbError(err, "failed to insert history entry", "history.Record")
	}

	return nil
}

// List returns entries, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, source, input, ast, value, ok, error, diagnostics, duration_ns
		FROM evaluations WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.OnlyErrors {
		query += " AND ok = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query history", "history.List")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry       Entry
			source      string
			errText     sql.NullString
			diagnostics sql.NullString
			durationNs  int64
		)

		if err := rows.Scan(&entry.ID, &entry.Timestamp, &source, &entry.Input, &entry.AST,
			&entry.Value, &entry.OK, &errText, &diagnostics, &durationNs); err != nil {
			return nil, dbError(err, "failed to scan history entry", "history.List")
		}

		entry.Source = Source(source)
		entry.Duration = time.Duration(durationNs)
		if errText.Valid {
			entry.Error = errText.String
		}
		if diagnostics.Valid {
			_ = json.Unmarshal([]byte(diagnostics.String), &entry.Diagnostics)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to read history", "history.List")
	}

	return entries, nil
}

// Stats summarizes the stored entries
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{BySource: make(map[Source]int64)}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0) FROM evaluations`)
	if err := row.Scan(&stats.Total, &stats.Errors); err != nil {
		return nil, dbError(err, "failed to count history", "history.Stats")
	}

	if stats.Total > 0 {
		var first, last string
		row = s.db.QueryRowContext(ctx, `SELECT MIN(timestamp), MAX(timestamp) FROM evaluations`)
		if err := row.Scan(&first, &last); err != nil {
			return nil, dbError(err, "failed to read history range", "history.Stats")
		}
		stats.First = parseTimestamp(first)
		stats.Last = parseTimestamp(last)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM evaluations GROUP BY source`)
	if err != nil {
		return nil, dbError(err, "failed to group history", "history.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int64
		if err := rows.Scan(&source, &count); err != nil {
			return nil, dbError(err, "failed to scan history group", "history.Stats")
		}
		stats.BySource[Source(source)] = count
	}

	return stats, rows.Err()
}

// Prune removes entries older than the given age
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()

	result, err := s.db.ExecContext(ctx, `DELETE FROM evaluations WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune history", "history.Prune")
	}
	deleted, _ := result.RowsAffected()

	return deleted, nil
}

// Vacuum compacts the database file
func (s *SQLiteStore) Vacuum(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return dbError(err, "failed to vacuum history", "history.Vacuum")
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func dbError(err error, message, operation string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(operation)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// parseTimestamp reads MIN/MAX results, which SQLite returns as text
func parseTimestamp(s string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

var _ Store = (*SQLiteStore)(nil)
