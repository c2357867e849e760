package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// fileVersion is written into every JSON store file.
const fileVersion = "1.0.0"

type jsonFile struct {
	Version string            `json:"version"`
	Records map[string]Record `json:"records"`
}

// JSONStore keeps all records in memory and rewrites the whole file on
// every change. Writes go to a temporary file that is renamed over the
// original, so readers never observe a partial file.
type JSONStore struct {
	path    string
	mu      sync.RWMutex
	records map[string]Record
}

// OpenJSON loads the store at path. A missing file is an empty store.
func OpenJSON(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, records: make(map[string]Record)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("invalid store file: missing version field")
	}
	for k, r := range f.Records {
		s.records[k] = r
	}
	return s, nil
}

func (s *JSONStore) Put(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.records[rec.Key]
	s.records[rec.Key] = rec
	if err := s.flush(); err != nil {
		if had {
			s.records[rec.Key] = prev
		} else {
			delete(s.records, rec.Key)
		}
		return err
	}
	return nil
}

func (s *JSONStore) Get(key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *JSONStore) List() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *JSONStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, key)
	if err := s.flush(); err != nil {
		s.records[key] = rec
		return err
	}
	return nil
}

// Close is a no-op; every change is already on disk.
func (s *JSONStore) Close() error { return nil }

// flush writes the records atomically. Callers hold the write lock.
func (s *JSONStore) flush() error {
	data, err := json.MarshalIndent(jsonFile{Version: fileVersion, Records: s.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
