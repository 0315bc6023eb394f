package archive

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-process Store. It backs the daemon when no
// database is configured and the handler tests.
type MemStore struct {
	mux  *sync.Mutex
	recs map[uuid.UUID]Record
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		mux:  &sync.Mutex{},
		recs: make(map[uuid.UUID]Record),
	}
}

// Put inserts or replaces the record keyed by its PID.
func (s *MemStore) Put(ctx context.Context, rec Record) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.recs[rec.PID] = rec
	return nil
}

// List returns all records, newest first.
func (s *MemStore) List(ctx context.Context) ([]Record, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	recs := make([]Record, 0, len(s.recs))
	for _, rec := range s.recs {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].PID.String() < recs[j].PID.String()
	})
	return recs, nil
}

// Get looks up a record by PID. The second return reports whether the
// record exists.
func (s *MemStore) Get(ctx context.Context, pid uuid.UUID) (Record, bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	rec, ok := s.recs[pid]
	return rec, ok, nil
}
