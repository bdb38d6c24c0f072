package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, c *controllers.Controller) {
	auth := server.Group("/auth")
	{
		auth.POST("/signup", c.Signup)
		auth.POST("/login", c.Login)
		auth.POST("/logout", c.Logout)
		auth.POST("/forgot-password", c.SendPasswordResetLink)
		auth.POST("/reset-password/:resetToken", c.ResetPassword)
	}
}
