package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/store"
)

type mapCache struct {
	data    map[string][]byte
	gets    int
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (m *mapCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mapCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.gets++
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

func TestListIsServedFromCacheUntilWrite(t *testing.T) {
	mem := store.NewMemoryRepository()
	c := newMapCache()
	repo := NewRepository(mem, c, time.Minute)
	ctx := context.Background()

	ls, _ := geo.NewLineString([][]float64{{0, 0}, {1, 1}, {2, 2}})
	if _, err := repo.Create(ctx, ls); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := repo.List(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("List = %v, %v; want 1 nogo", first, err)
	}
	if _, ok := c.data[KeyNogoList]; !ok {
		t.Fatalf("List did not populate the cache")
	}

	// A write that bypasses the decorator is invisible until invalidation.
	other, _ := geo.NewLineString([][]float64{{5, 5}, {6, 6}, {7, 7}})
	if _, err := mem.Create(ctx, other); err != nil {
		t.Fatalf("Create: %v", err)
	}
	cached, _ := repo.List(ctx)
	if len(cached) != 1 {
		t.Fatalf("cached List len = %d, want 1", len(cached))
	}

	if _, err := repo.Delete(ctx, first[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	fresh, _ := repo.List(ctx)
	if len(fresh) != 1 || fresh[0].ID == first[0].ID {
		t.Fatalf("List after delete = %+v, want only the second nogo", fresh)
	}
}

func TestDeleteOfUnknownIDKeepsCache(t *testing.T) {
	c := newMapCache()
	repo := NewRepository(store.NewMemoryRepository(), c, time.Minute)

	if _, err := repo.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if c.deletes != 0 {
		t.Fatalf("cache invalidated %d times, want 0", c.deletes)
	}
}
