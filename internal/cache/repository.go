// Package cache keeps the nogo list in redis so repeated map loads do not hit
// the database.
package cache

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
	"cycle_planner/internal/store"
)

// KeyNogoList holds the full List result.
const KeyNogoList = "nogos:all"

// JSONCache is the subset of RedisCache the repository decorator needs.
type JSONCache interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Repository serves List from the cache and invalidates it on every write.
// Cache errors never fail a request; they fall through to the wrapped
// repository.
type Repository struct {
	store.Repository
	cache JSONCache
	ttl   time.Duration
}

func NewRepository(next store.Repository, c JSONCache, ttl time.Duration) *Repository {
	return &Repository{Repository: next, cache: c, ttl: ttl}
}

func (r *Repository) List(ctx context.Context) ([]models.Nogo, error) {
	var docs []models.NogoDocument
	if ok, err := r.cache.GetJSON(ctx, KeyNogoList, &docs); err == nil && ok {
		if nogos, convErr := fromDocuments(docs); convErr == nil {
			return nogos, nil
		}
	}

	nogos, err := r.Repository.List(ctx)
	if err != nil {
		return nil, err
	}

	docs = make([]models.NogoDocument, len(nogos))
	for i, n := range nogos {
		docs[i] = n.Document()
	}
	if err := r.cache.SetJSON(ctx, KeyNogoList, docs, r.ttl); err != nil {
		logrus.WithError(err).Warn("failed to cache nogo list")
	}
	return nogos, nil
}

func (r *Repository) Create(ctx context.Context, ls *geom.LineString) (string, error) {
	id, err := r.Repository.Create(ctx, ls)
	r.invalidate(ctx)
	return id, err
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	found, err := r.Repository.Delete(ctx, id)
	if found || err != nil {
		r.invalidate(ctx)
	}
	return found, err
}

func (r *Repository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, KeyNogoList); err != nil {
		logrus.WithError(err).Warn("failed to invalidate cached nogo list")
	}
}

func fromDocuments(docs []models.NogoDocument) ([]models.Nogo, error) {
	nogos := make([]models.Nogo, 0, len(docs))
	for _, d := range docs {
		ls, err := geo.NewLineString(d.Coordinates)
		if err != nil {
			return nil, err
		}
		nogos = append(nogos, models.Nogo{ID: d.ID, Geometry: ls})
	}
	return nogos, nil
}
