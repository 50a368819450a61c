package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"cycle_planner/internal/config"
	"cycle_planner/internal/controllers"
	"cycle_planner/internal/hub"
	"cycle_planner/internal/logger"
	"cycle_planner/internal/metrics"
	"cycle_planner/internal/middleware"
	"cycle_planner/internal/routes"
	"cycle_planner/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	logger.Setup(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel, Stdout: cfg.LogStdout})
	gin.SetMode(gin.ReleaseMode)
	// Recovered panics and gin's debug output go to the rotating log too.
	gin.DefaultWriter = logger.Writer()
	gin.DefaultErrorWriter = logger.Writer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeStore, err := config.OpenStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.StoreDriver).Fatal("Failed to connect to nogo store")
	}
	defer closeStore()

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to register metrics")
	}

	feed := hub.NewNogoHub()
	go feed.Run(ctx)

	nogos := controllers.NewNogoController(store.NewService(repo), feed, collector)
	r := routes.SetupRouter(routes.Dependencies{
		Nogos:     nogos,
		Metrics:   collector,
		AccessLog: logger.AccessLog(),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: middleware.EnableCORS(r, cfg.CORSAllowedOrigins),
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":   cfg.HTTPAddr,
			"driver": cfg.StoreDriver,
		}).Info("Nogo store listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("HTTP server error")
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logrus.Info("Shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown error")
	}

	logrus.Info("Shutdown complete")
}
