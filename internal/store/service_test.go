package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
)

func mustLine(t *testing.T, coords [][]float64) *geom.LineString {
	t.Helper()
	ls, err := geo.NewLineString(coords)
	if err != nil {
		t.Fatalf("NewLineString(%v): %v", coords, err)
	}
	return ls
}

// flakyRepository fails every Create whose line starts at failLon.
type flakyRepository struct {
	*MemoryRepository
	failLon   float64
	deleteErr error
}

func (f *flakyRepository) Create(ctx context.Context, ls *geom.LineString) (string, error) {
	if ls.Coord(0)[0] == f.failLon {
		return "", errors.New("insert refused")
	}
	return f.MemoryRepository.Create(ctx, ls)
}

func (f *flakyRepository) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.MemoryRepository.Delete(ctx, id)
}

func TestCreateManyNormalizesTwoPointLines(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	res := svc.CreateMany(ctx, []*geom.LineString{
		mustLine(t, [][]float64{{0, 0, 0}, {1, 1, 0}}),
		mustLine(t, [][]float64{{0, 0}, {1, 1}, {2, 2}}),
	})
	if res.Succeeded != 2 || res.Failed != 0 {
		t.Fatalf("result = %+v, want 2 succeeded", res)
	}

	nogos, _ := svc.List(ctx)
	if len(nogos) != 2 {
		t.Fatalf("len(List) = %d, want 2", len(nogos))
	}
	if n := nogos[0].Geometry.NumCoords(); n != 3 {
		t.Fatalf("first nogo has %d points, want 3", n)
	}
	want := [][]float64{{0, 0}, {1, 1}, {2, 2}}
	if got := geo.Coordinates(nogos[1].Geometry); !reflect.DeepEqual(got, want) {
		t.Fatalf("second nogo = %v, want %v", got, want)
	}
}

func TestCreateManyContinuesAfterFailure(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: NewMemoryRepository(), failLon: 5}
	svc := NewService(repo)

	res := svc.CreateMany(context.Background(), []*geom.LineString{
		mustLine(t, [][]float64{{5, 0}, {6, 1}, {7, 2}}),
		mustLine(t, [][]float64{{1, 0}, {2, 1}, {3, 2}}),
	})
	if res.Failed != 1 || res.Succeeded != 1 {
		t.Fatalf("result = %+v, want 1 failed and 1 succeeded", res)
	}
	if repo.Len() != 1 {
		t.Fatalf("stored = %d, want 1", repo.Len())
	}
}

func TestDeleteManyIgnoresUnknownIDs(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	svc.CreateMany(ctx, []*geom.LineString{
		mustLine(t, [][]float64{{0, 0}, {1, 1}, {2, 2}}),
		mustLine(t, [][]float64{{3, 3}, {4, 4}, {5, 5}}),
	})

	res := svc.DeleteMany(ctx, []string{"does-not-exist"})
	if res.Missing != 1 || res.Failed != 0 || res.Changed() {
		t.Fatalf("result = %+v, want a single missing id", res)
	}
	if repo.Len() != 2 {
		t.Fatalf("stored = %d, want 2", repo.Len())
	}
}

func TestDeleteManyRemovesOnlyRequested(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	svc.CreateMany(ctx, []*geom.LineString{
		mustLine(t, [][]float64{{0, 0}, {1, 1}, {2, 2}}),
		mustLine(t, [][]float64{{3, 3}, {4, 4}, {5, 5}}),
	})
	nogos, _ := svc.List(ctx)

	res := svc.DeleteMany(ctx, []string{nogos[0].ID, nogos[0].ID})
	if res.Succeeded != 1 || res.Missing != 1 {
		t.Fatalf("result = %+v, want 1 deleted and 1 missing", res)
	}

	left, _ := svc.List(ctx)
	if len(left) != 1 || left[0].ID != nogos[1].ID {
		t.Fatalf("remaining = %+v, want only %s", left, nogos[1].ID)
	}
}

func TestDeleteManyCountsBackendFailures(t *testing.T) {
	repo := &flakyRepository{MemoryRepository: NewMemoryRepository(), failLon: -1, deleteErr: errors.New("down")}
	svc := NewService(repo)

	res := svc.DeleteMany(context.Background(), []string{"a", "b"})
	if res.Failed != 2 {
		t.Fatalf("result = %+v, want 2 failed", res)
	}
}
