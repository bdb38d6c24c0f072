package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (c *Controller) GetHome(ctx *gin.Context) {
	message := `Welcome to the ` + c.cfg.StoreName + ` API. Enjoy seamless interaction with this API.

The following are the endpoints for this API:

AUTH
- POST "/auth/signup" - Create user account (the first account becomes admin)
- POST "/auth/login" - Access user account
- POST "/auth/logout" - Sign out and empty the cart
- POST "/auth/forgot-password" - Request password reset
- POST "/auth/reset-password/:resetToken" - Reset user password

PRODUCTS
- GET "/products" - Available products (?search, ?category, ?lang)
- GET "/products/categories" - Product categories
- GET "/products/:id" - Get product by ID

CART
- GET "/cart" - Current cart
- POST "/cart/items" - Add product to cart
- PATCH "/cart/items/:productId" - Set quantity
- POST "/cart/items/:productId/step" - Step quantity up or down
- DELETE "/cart/items/:productId" - Remove item
- DELETE "/cart" - Empty cart
- POST "/language/toggle", PUT "/language" - Switch language

CHECKOUT & ORDERS
- POST "/checkout/cash" - Place a cash order
- POST "/checkout/payment" - Start an online payment
- POST "/checkout/payment/confirm" - Confirm an online payment
- POST "/checkout/payment/cancel" - Cancel an online payment
- GET "/orders" - My orders
- GET "/orders/khata" - My khata
- GET "/invoice/:id" - Invoice (JSON or ?format=html)

PROFILE
- GET, PATCH "/profile" - View or edit profile
- POST "/profile/photo" - Upload profile photo

ADMIN
- "/admin/dashboard", "/admin/products", "/admin/users", "/admin/orders", "/admin/khata"

LIVE
- "/ws/products", "/ws/session", "/ws/uploads", "/admin/ws/products", "/admin/ws/orders"`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// GetHealth reports whether the store answers.
func (c *Controller) GetHealth(ctx *gin.Context) {
	if _, err := c.store.CountUsers(ctx.Request.Context()); err != nil {
		c.log.Error("health check failed", "error", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (c *Controller) GetMetrics(ctx *gin.Context) {
	c.metrics.Handler().ServeHTTP(ctx.Writer, ctx.Request)
}
