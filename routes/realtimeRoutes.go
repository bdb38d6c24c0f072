package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func RealtimeRoutes(server *gin.Engine, c *controllers.Controller, requireAuth gin.HandlerFunc) {
	ws := server.Group("/ws")
	{
		ws.GET("/products", c.ProductFeed)
		ws.GET("/session", requireAuth, c.SessionFeed)
		ws.GET("/uploads", requireAuth, c.UploadFeed)
	}
}
