package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"

	"cycle_planner/internal/editor"
	"cycle_planner/internal/geo"
)

// fixNogos replaces every stored two-point nogo with its normalized
// three-point form. The replacement is created before the original is
// deleted, so a failure never loses a nogo.
func fixNogos(ctx context.Context, store editor.NogoStore) (int, error) {
	nogos, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing nogos: %w", err)
	}

	fixed := 0
	for _, n := range nogos {
		if !geo.IsDegenerate(n.Geometry) {
			continue
		}
		if err := store.CreateMany(ctx, []*geom.LineString{geo.Normalize(n.Geometry)}); err != nil {
			return fixed, fmt.Errorf("recreating nogo %s: %w", n.ID, err)
		}
		if err := store.DeleteMany(ctx, []string{n.ID}); err != nil {
			return fixed, fmt.Errorf("deleting nogo %s: %w", n.ID, err)
		}
		logrus.WithField("nogo_id", n.ID).Info("Nogo normalized")
		fixed++
	}
	return fixed, nil
}
