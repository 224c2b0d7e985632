package repository

import (
	"cmp"
	"slices"
	"sync"

	"github.com/mtiwari1/filecert/internal/certify"
)

// MemoryStore implements Repository with a map guarded by a single RWMutex.
// Its contents live only as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]certify.Record
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]certify.Record)}
}

// Put stores a copy of record under record.Key(). Last write wins.
func (s *MemoryStore) Put(record certify.Record) {
	rec := record.Clone()

	s.mu.Lock()
	s.records[rec.Key()] = rec
	s.mu.Unlock()
}

// Get returns a copy of the record stored under sha256.
func (s *MemoryStore) Get(sha256 string) (certify.Record, error) {
	s.mu.RLock()
	rec, ok := s.records[sha256]
	s.mu.RUnlock()

	if !ok {
		return certify.Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

// List returns copies of every record ordered by IssuedAt, newest first.
func (s *MemoryStore) List() []certify.Record {
	s.mu.RLock()
	out := make([]certify.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b certify.Record) int {
		if c := b.IssuedAt.Compare(a.IssuedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Key(), b.Key())
	})
	return out
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
