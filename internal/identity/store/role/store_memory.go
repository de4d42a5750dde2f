package role

import (
	"context"
	"sort"
	"sync"

	"userdir/internal/identity/models"
	"userdir/pkg/platform/sentinel"
)

// InMemoryStore keeps role reference data in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	roles map[int]*models.Role
}

func New() *InMemoryStore {
	return &InMemoryStore{roles: make(map[int]*models.Role)}
}

func (s *InMemoryStore) Save(ctx context.Context, r *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.roles[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id int) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
