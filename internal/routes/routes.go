package routes

import (
	"github.com/gin-gonic/gin"

	"cycle_planner/internal/controllers"
	"cycle_planner/internal/metrics"
)

// Dependencies are the handlers and middleware the router is built from.
type Dependencies struct {
	Nogos     *controllers.NogoController
	Metrics   *metrics.Collector
	AccessLog gin.HandlerFunc
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	if deps.AccessLog != nil {
		r.Use(deps.AccessLog)
	}
	r.Use(deps.Metrics.Middleware())

	NogoRoutes(r, deps.Nogos)
	FeedRoutes(r, deps.Nogos)
	HealthRoutes(r, deps.Nogos, deps.Metrics)

	return r
}
