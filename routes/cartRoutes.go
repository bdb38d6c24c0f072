package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

// CartRoutes work for guests too; the cart lives on the session.
func CartRoutes(server *gin.Engine, c *controllers.Controller) {
	cart := server.Group("/cart")
	{
		cart.GET("", c.GetCart)
		cart.DELETE("", c.ClearCart)
		cart.POST("/items", c.AddCartItem)
		cart.PATCH("/items/:productId", c.UpdateCartItem)
		cart.POST("/items/:productId/step", c.StepCartItem)
		cart.DELETE("/items/:productId", c.RemoveCartItem)
	}
	server.POST("/language/toggle", c.ToggleLanguage)
	server.PUT("/language", c.SetLanguage)
}
