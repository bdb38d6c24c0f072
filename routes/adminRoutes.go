package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine, c *controllers.Controller, requireAuth, requireAdmin gin.HandlerFunc) {
	admin := server.Group("/admin", requireAuth, requireAdmin)
	{
		admin.GET("/dashboard", c.GetDashboard)

		admin.GET("/products", c.AdminGetProducts)
		admin.POST("/products", c.CreateProduct)
		admin.GET("/products/export", c.ExportProducts)
		admin.POST("/products/import", c.ImportProducts)
		admin.POST("/products/image", c.UploadProductImage)
		admin.PUT("/products/:id", c.UpdateProduct)
		admin.PATCH("/products/:id/availability", c.ToggleAvailability)
		admin.DELETE("/products/:id", c.DeleteProduct)

		admin.GET("/users", c.AdminGetUsers)
		admin.PATCH("/users/:id/disabled", c.SetUserDisabled)

		admin.GET("/orders", c.AdminGetOrders)
		admin.PATCH("/orders/:id/status", c.UpdateOrderStatus)

		admin.GET("/khata", c.AdminGetKhata)
		admin.GET("/khata/export", c.ExportKhata)

		admin.GET("/ws/products", c.AdminProductFeed)
		admin.GET("/ws/orders", c.AdminOrderFeed)
	}
}
