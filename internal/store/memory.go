package store

import (
	"context"
	"sync"
	"time"

	"leon/internal/models"
)

// MemoryStore is an in-process implementation of both store interfaces.
// Used by tests and by STORE_DRIVER=memory for local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	leon      *models.Leon
	knowledge []models.Knowledge
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Get returns a copy of the singleton
func (s *MemoryStore) Get(ctx context.Context) (*models.Leon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.leon == nil {
		return nil, ErrNotFound
	}
	return s.leon.Clone(), nil
}

// Create stores the seed document
func (s *MemoryStore) Create(ctx context.Context, leon *models.Leon, overwrite bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leon != nil && !overwrite {
		return false, nil
	}
	s.leon = leon.Clone()
	s.leon.ID = models.LeonID
	if s.leon.Experiences == nil {
		s.leon.Experiences = []models.Experience{}
	}
	return true, nil
}

// Update applies the mutation under the write lock
func (s *MemoryStore) Update(ctx context.Context, update models.LeonUpdate) (*models.Leon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.leon == nil {
		return nil, ErrNotFound
	}
	if update.ExpectedVersion != nil && *update.ExpectedVersion != s.leon.Version {
		return nil, ErrVersionConflict
	}

	update.Apply(s.leon, s.now())
	return s.leon.Clone(), nil
}

// Insert appends a knowledge record
func (s *MemoryStore) Insert(ctx context.Context, k *models.Knowledge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.knowledge = append(s.knowledge, *k)
	return nil
}

// FindByTopicKey returns records whose key equals key, in insertion order
func (s *MemoryStore) FindByTopicKey(ctx context.Context, key string) ([]models.Knowledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := []models.Knowledge{}
	for i := range s.knowledge {
		if s.knowledge[i].Key() == key {
			records = append(records, s.knowledge[i])
		}
	}
	return records, nil
}

// All returns every record in insertion order
func (s *MemoryStore) All(ctx context.Context) ([]models.Knowledge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.Knowledge, len(s.knowledge))
	copy(records, s.knowledge)
	return records, nil
}

// Count returns the number of knowledge records
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.knowledge)), nil
}
