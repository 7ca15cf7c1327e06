package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements AnalysisStore in memory. Used by tests and as the
// default when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	analyses map[string]*Analysis
}

// Compile-time interface check
var _ AnalysisStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory analysis store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{analyses: make(map[string]*Analysis)}
}

// Save persists an analysis with upsert semantics.
func (s *MemoryStore) Save(ctx context.Context, a *Analysis) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *a
	s.analyses[a.ID] = &stored
	return nil
}

// Get retrieves an analysis by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.analyses[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}

	found := *a
	return &found, nil
}

// List returns the most recent analyses, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analyses := make([]*Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		found := *a
		analyses = append(analyses, &found)
	}

	sort.Slice(analyses, func(i, j int) bool {
		if analyses[i].CreatedAt.Equal(analyses[j].CreatedAt) {
			return analyses[i].ID < analyses[j].ID
		}
		return analyses[i].CreatedAt.After(analyses[j].CreatedAt)
	})

	if limit > 0 && len(analyses) > limit {
		analyses = analyses[:limit]
	}
	return analyses, nil
}

// Delete removes an analysis by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.analyses, id)
	return nil
}

// Count returns the number of stored analyses.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.analyses)), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
