package store

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// BulkResult summarizes a CreateMany or DeleteMany call. Callers of the HTTP
// API never see it; it feeds logs, metrics and the change feed.
type BulkResult struct {
	Requested int
	Succeeded int
	Missing   int
	Failed    int
}

// Changed reports whether at least one nogo was created or removed.
func (r BulkResult) Changed() bool {
	return r.Succeeded > 0
}

// Service applies the nogo API's bulk semantics on top of a Repository.
// Every item is handled independently: a failed insert or delete is logged
// and the rest still go through. Nothing is rolled back.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]models.Nogo, error) {
	return s.repo.List(ctx)
}

// CreateMany stores each line under a fresh id. Two-point lines are
// normalized first so the stored geometry is never perfectly straight.
func (s *Service) CreateMany(ctx context.Context, lines []*geom.LineString) BulkResult {
	res := BulkResult{Requested: len(lines)}
	for i, ls := range lines {
		normalized := geo.Normalize(ls)
		id, err := s.repo.Create(ctx, normalized)
		if err != nil {
			res.Failed++
			logrus.WithError(err).WithField("index", i).Error("CreateMany: failed to insert nogo")
			continue
		}
		res.Succeeded++
		logrus.WithFields(logrus.Fields{
			"nogo_id":    id,
			"points":     normalized.NumCoords(),
			"normalized": normalized != ls,
		}).Debug("nogo created")
	}
	return res
}

// DeleteMany removes each id that exists. Unknown ids are counted as missing
// and are not an error.
func (s *Service) DeleteMany(ctx context.Context, ids []string) BulkResult {
	res := BulkResult{Requested: len(ids)}
	for _, id := range ids {
		found, err := s.repo.Delete(ctx, id)
		switch {
		case err != nil:
			res.Failed++
			logrus.WithError(err).WithField("nogo_id", id).Error("DeleteMany: failed to delete nogo")
		case !found:
			res.Missing++
			logrus.WithField("nogo_id", id).Debug("DeleteMany: nogo not found, skipping")
		default:
			res.Succeeded++
		}
	}
	return res
}

func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
