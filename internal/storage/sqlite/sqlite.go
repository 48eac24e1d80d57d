// Package sqlite реализует storage.Store поверх SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"skyhook/internal/storage"
)

// Store хранит историю команд в SQLite.
type Store struct {
	db *sql.DB
}

// Open инициализирует соединение и выполняет миграции.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS command_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			function TEXT NOT NULL,
			module TEXT,
			success INTEGER NOT NULL,
			request_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts ON command_history(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_history_function_ts ON command_history(function, ts);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveCommand сохраняет запись о выполненной команде.
func (s *Store) SaveCommand(ctx context.Context, rec storage.CommandRecord) error {
	ts := rec.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO command_history(function, module, success, request_id, ts) VALUES(?,?,?,?,?)`,
		rec.Function, rec.Module, boolToInt(rec.Success), rec.RequestID, ts.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert command record: %w", err)
	}
	return nil
}

// Recent возвращает последние записи, новые первыми.
func (s *Store) Recent(ctx context.Context, limit int) ([]storage.CommandRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT function, module, success, request_id, ts FROM command_history ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []storage.CommandRecord
	for rows.Next() {
		var rec storage.CommandRecord
		var success int
		var ts string
		if err := rows.Scan(&rec.Function, &rec.Module, &success, &rec.RequestID, &ts); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Success = success != 0
		parsed, err := parseTS(ts)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp: %w", err)
		}
		rec.TS = parsed
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PruneBefore удаляет записи старше cutoff и возвращает их количество.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM command_history WHERE ts < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func parseTS(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", v)
}
