package routes

import (
	"github.com/gin-gonic/gin"

	"cycle_planner/internal/controllers"
	"cycle_planner/internal/metrics"
)

func HealthRoutes(r *gin.Engine, nogos *controllers.NogoController, m *metrics.Collector) {
	r.GET("/healthz", nogos.Healthz)
	r.GET("/readyz", nogos.Readyz)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
}
