// Package store persists precomputed fit results keyed by the regions
// they were computed for.
package store

import (
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/RectFit/internal/model"
)

// ErrNotFound is returned by Get and Delete for unknown keys.
var ErrNotFound = errors.New("store: key not found")

// Key builds the lookup key for a combination of regions: the IDs sorted
// lexicographically and joined with "+". Selecting the same regions in
// any order yields the same key.
func Key(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

// Record is one stored result.
type Record struct {
	ID        string          `json:"id"`
	Key       string          `json:"key"`
	Rectangle model.Rectangle `json:"rectangle"`
	Method    model.Method    `json:"method"`
	Area      float64         `json:"area"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewRecord wraps a fit result for storage under key.
func NewRecord(key string, res model.FitResult) Record {
	return Record{
		ID:        uuid.New().String(),
		Key:       key,
		Rectangle: res.Rectangle,
		Method:    res.Method,
		Area:      res.Rectangle.Area,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is a keyed result store. Put replaces any record with the same key.
// List returns records ordered by key.
type Store interface {
	Put(rec Record) error
	Get(key string) (Record, error)
	List() ([]Record, error)
	Delete(key string) error
	Close() error
}

// Open picks a backend from the path: ".db", ".sqlite" and ".sqlite3"
// use SQLite, anything else the JSON file backend.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	default:
		return OpenJSON(path)
	}
}
