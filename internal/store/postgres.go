package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"gorm.io/gorm"

	"cycle_planner/internal/geo"
	"cycle_planner/internal/models"
)

// PostgresRepository stores nogos as WKB rows through gorm.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Nogo, error) {
	var rows []models.NogoRecord
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing nogos: %w", err)
	}

	nogos := make([]models.Nogo, 0, len(rows))
	for _, row := range rows {
		ls, err := geo.FromWKB(row.Geometry)
		if err != nil {
			// One unreadable row should not hide the rest.
			logrus.WithError(err).WithField("nogo_id", row.ID).Warn("skipping nogo with unreadable geometry")
			continue
		}
		nogos = append(nogos, models.Nogo{ID: row.ID, Geometry: ls})
	}
	return nogos, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ls *geom.LineString) (string, error) {
	wkbGeom, err := geo.ToWKB(ls)
	if err != nil {
		return "", fmt.Errorf("encoding geometry: %w", err)
	}

	row := models.NogoRecord{
		ID:       uuid.NewString(),
		Type:     models.NogoType,
		Geometry: wkbGeom,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("inserting nogo: %w", err)
	}
	return row.ID, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.NogoRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("deleting nogo %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
