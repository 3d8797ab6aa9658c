// Package mirror implements the local fallback cache: a clinic-scoped copy of
// each collection, persisted as a single JSON snapshot file so the service can
// keep accepting writes while the backend is unreachable.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var ErrNotFound = errors.New("record not found in mirror")

// Store is a durable key-value map of "<clinicID>:<table>" to record arrays.
// Persistence granularity is the whole cache: every mutation rewrites the
// entire snapshot file. Acceptable at clinic scale; a known ceiling.
type Store struct {
	mu    sync.Mutex
	path  string
	cache map[string][]collection.Record
}

// Open loads the snapshot at path, or starts empty when the file does not
// exist yet. A corrupt snapshot is an error; callers decide whether to
// discard it.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		cache: make(map[string][]collection.Record),
	}

	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mirror snapshot: %w", err)
	}
	if err := json.Unmarshal(b, &s.cache); err != nil {
		return nil, fmt.Errorf("failed to decode mirror snapshot: %w", err)
	}
	return s, nil
}

// Get returns the cached records for a table and clinic, newest insert first.
// The returned slice is a copy; mutating it does not touch the cache.
func (s *Store) Get(table collection.Name, clinicID string) []collection.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.cache[collection.Key(clinicID, table)]
	out := make([]collection.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}

// Put inserts the record when its id is absent (prepended, so fallback writes
// surface at the top of a listing) or overlays its fields onto the existing
// record with the same id. No schema validation happens here.
func (s *Store) Put(table collection.Name, clinicID string, rec collection.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := collection.Key(clinicID, table)
	rows := s.cache[key]
	for i, existing := range rows {
		if existing.ID() == rec.ID() {
			rows[i] = collection.Overlay(existing, rec)
			s.cache[key] = rows
			return s.flushLocked()
		}
	}
	s.cache[key] = append([]collection.Record{rec.Clone()}, rows...)
	return s.flushLocked()
}

// Delete removes the record with the given id. Deleting an id that is not
// cached returns ErrNotFound; the snapshot is untouched.
func (s *Store) Delete(table collection.Name, clinicID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := collection.Key(clinicID, table)
	rows := s.cache[key]
	for i, existing := range rows {
		if existing.ID() == id {
			s.cache[key] = append(rows[:i:i], rows[i+1:]...)
			return s.flushLocked()
		}
	}
	return ErrNotFound
}

// Replace swaps the cached rows for a table wholesale. The store uses it to
// write merged load results back so a later cold start sees them.
func (s *Store) Replace(table collection.Name, clinicID string, recs []collection.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]collection.Record, len(recs))
	for i, r := range recs {
		rows[i] = r.Clone()
	}
	s.cache[collection.Key(clinicID, table)] = rows
	return s.flushLocked()
}

// flushLocked serialises the whole cache and renames it into place so readers
// never observe a partial snapshot. Caller must hold s.mu.
func (s *Store) flushLocked() error {
	b, err := json.Marshal(s.cache)
	if err != nil {
		return fmt.Errorf("failed to encode mirror snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create mirror directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mirror-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
