package routes

import (
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine, c *controllers.Controller) {
	server.GET("/products", c.GetProducts)
	server.GET("/products/categories", c.GetCategories)
	server.GET("/products/:id", c.GetProduct)
}
