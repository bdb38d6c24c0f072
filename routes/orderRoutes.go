package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, c *controllers.Controller, requireAuth gin.HandlerFunc) {
	checkout := server.Group("/checkout", requireAuth)
	{
		checkout.POST("/cash", c.PlaceCashOrder)
		checkout.POST("/payment", c.BeginPayment)
		checkout.POST("/payment/confirm", c.ConfirmPayment)
		checkout.POST("/payment/cancel", c.CancelPayment)
	}

	server.GET("/orders", requireAuth, c.GetMyOrders)
	server.GET("/orders/khata", requireAuth, c.GetMyKhata)
	server.GET("/invoice/:id", requireAuth, c.GetInvoice)
}
