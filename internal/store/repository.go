// Package store persists nogos. Backends implement Repository; Service layers
// the bulk create/delete semantics of the API on top of any of them.
package store

import (
	"context"

	"github.com/twpayne/go-geom"

	"cycle_planner/internal/models"
)

// Repository is a flat keyed collection of nogos.
type Repository interface {
	// List returns every nogo, in insertion order where the backend keeps one.
	List(ctx context.Context) ([]models.Nogo, error)
	// Create stores ls under a fresh id and returns that id.
	Create(ctx context.Context, ls *geom.LineString) (string, error)
	// Delete removes the nogo with the given id. Unknown or malformed ids
	// report false with a nil error.
	Delete(ctx context.Context, id string) (bool, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}
