package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/piwi3910/RectFit/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	rect_json  TEXT NOT NULL,
	method     TEXT NOT NULL,
	area       DOUBLE NOT NULL,
	created_at TEXT NOT NULL
);
`

// SQLiteStore keeps records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and ensures the
// results table exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(rec Record) error {
	rect, err := json.Marshal(rec.Rectangle)
	if err != nil {
		return fmt.Errorf("failed to marshal rectangle: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO results (key, id, rect_json, method, area, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET id = excluded.id, rect_json = excluded.rect_json,
		 method = excluded.method, area = excluded.area, created_at = excluded.created_at`,
		rec.Key, rec.ID, string(rect), string(rec.Method), rec.Area, rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(key string) (Record, error) {
	row := s.db.QueryRow(`SELECT key, id, rect_json, method, area, created_at FROM results WHERE key = ?`, key)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) List() ([]Record, error) {
	rows, err := s.db.Query(`SELECT key, id, rect_json, method, area, created_at FROM results ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(key string) error {
	res, err := s.db.Exec(`DELETE FROM results WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec     Record
		rect    string
		method  string
		created string
	)
	if err := row.Scan(&rec.Key, &rec.ID, &rect, &method, &rec.Area, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("failed to read result: %w", err)
	}
	if err := json.Unmarshal([]byte(rect), &rec.Rectangle); err != nil {
		return Record{}, fmt.Errorf("failed to parse rectangle: %w", err)
	}
	rec.Method = model.Method(method)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Record{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	rec.CreatedAt = t
	return rec, nil
}
