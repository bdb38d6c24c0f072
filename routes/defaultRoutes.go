package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func DefaultRoutes(server *gin.Engine, c *controllers.Controller) {
	server.GET("/", c.GetHome)
	server.GET("/health", c.GetHealth)
	server.GET("/metrics", c.GetMetrics)
}
