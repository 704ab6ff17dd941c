package memory

import (
	"context"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Store implements ports.EditingDataStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.EditingData
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.EditingData),
	}
}

// Set keeps a copy of data so later changes by the caller are not observed.
func (s *Store) Set(ctx context.Context, key string, data *domain.EditingData) error {
	copied := data.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = copied
	return nil
}

// Get returns a copy of the snapshot stored under key.
func (s *Store) Get(ctx context.Context, key string) (*domain.EditingData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[key]
	if !ok {
		return nil, domain.ErrEditingDataNotFound
	}
	return data.Clone(), nil
}

// Len reports how many snapshots are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
