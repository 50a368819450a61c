package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cycle_planner/internal/cache"
	"cycle_planner/internal/logger"
	"cycle_planner/internal/models"
	"cycle_planner/internal/store"
)

// OpenStore connects the configured backend and, when REDIS_ENABLED is set,
// wraps it with the list cache. The returned close function releases every
// connection that was opened.
func OpenStore(ctx context.Context, cfg *Config) (store.Repository, func(), error) {
	var (
		repo    store.Repository
		closers []func()
	)

	switch cfg.StoreDriver {
	case DriverPostgres:
		db, err := OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
		repo = store.NewPostgresRepository(db)
	case DriverMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		m, err := store.ConnectMongo(connectCtx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = m.Close(context.Background()) })
		repo = m
	case DriverMemory:
		logrus.Warn("using in-memory nogo store; nogos are lost on restart")
		repo = store.NewMemoryRepository()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisEnabled {
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logrus.WithError(err).Warn("redis unavailable, serving nogos without cache")
		} else {
			closers = append(closers, func() { _ = rc.Close() })
			repo = cache.NewRepository(repo, rc, cfg.CacheTTL)
		}
	}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return repo, closeAll, nil
}

// OpenPostgres opens the gorm connection and migrates the nogo table.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.GormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.NogoRecord{}); err != nil {
		return nil, fmt.Errorf("auto-migration failed: %w", err)
	}
	return db, nil
}
