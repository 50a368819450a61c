package routes

import (
	"github.com/gin-gonic/gin"

	"cycle_planner/internal/controllers"
)

func FeedRoutes(r *gin.Engine, nogos *controllers.NogoController) {
	ws := r.Group("/ws")
	{
		ws.GET("/nogos", nogos.HandleNogoFeed)
	}
}
