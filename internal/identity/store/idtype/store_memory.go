package idtype

import (
	"context"
	"sort"
	"sync"

	"userdir/internal/identity/models"
	"userdir/pkg/platform/sentinel"
)

// InMemoryStore keeps identification-type reference data in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	types map[int]*models.IdType
}

func New() *InMemoryStore {
	return &InMemoryStore{types: make(map[int]*models.IdType)}
}

func (s *InMemoryStore) Save(ctx context.Context, t *models.IdType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.types[t.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id int) (*models.IdType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.types[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*models.IdType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.IdType, 0, len(s.types))
	for _, t := range s.types {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
