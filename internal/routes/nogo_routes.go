package routes

import (
	"github.com/gin-gonic/gin"

	"cycle_planner/internal/controllers"
)

func NogoRoutes(r *gin.Engine, nogos *controllers.NogoController) {
	api := r.Group("/api")
	{
		api.GET("/nogos", nogos.ListNogos)
		api.POST("/nogos", nogos.CreateNogos)
		api.POST("/nogos/delete", nogos.DeleteNogos)
	}
}
