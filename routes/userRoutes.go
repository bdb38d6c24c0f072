package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func UserRoutes(server *gin.Engine, c *controllers.Controller, requireAuth gin.HandlerFunc) {
	profile := server.Group("/profile", requireAuth)
	{
		profile.GET("", c.GetProfile)
		profile.PATCH("", c.UpdateProfile)
		profile.POST("/photo", c.UploadProfilePhoto)
	}
}
