package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/models"
)

// MemoryRepository keeps nogos in process memory. It backs local development
// (STORE_DRIVER=memory) and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	order []string
	nogos map[string]*geom.LineString
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nogos: make(map[string]*geom.LineString),
	}
}

func (m *MemoryRepository) List(ctx context.Context) ([]models.Nogo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Nogo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, models.Nogo{ID: id, Geometry: m.nogos[id]})
	}
	return out, nil
}

func (m *MemoryRepository) Create(ctx context.Context, ls *geom.LineString) (string, error) {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nogos[id] = ls
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nogos[id]; !ok {
		return false, nil
	}
	delete(m.nogos, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored nogos.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
