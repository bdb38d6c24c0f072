package controllers

import (
	"errors"
	"net/http"

	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/gin-gonic/gin"
)

const (
	msgNotInCart           = "Product is not in your cart"
	msgProductNotAvailable = "Product is not available"
)

func cartView(sess *cart.Session) gin.H {
	items := sess.Cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return gin.H{
		"items":           items,
		"count":           sess.Cart.Count(),
		"total":           sess.Cart.Total().InexactFloat64(),
		"hasZeroQuantity": sess.Cart.HasZeroQuantity(),
		"language":        sess.Language,
		"authenticated":   sess.Authenticated,
		"notice":          sess.Notice,
	}
}

// GetCart returns the session's cart with its line count and total. A
// pending sign-out notice is shown once and then cleared.
func (c *Controller) GetCart(ctx *gin.Context) {
	sess := c.session(ctx)
	view := cartView(sess)
	if sess.Notice != "" {
		sess.Notice = ""
		if !c.saveSession(ctx, sess) {
			return
		}
	}
	sendJSONResponse(ctx, http.StatusOK, view)
}

func (c *Controller) respondWithCart(ctx *gin.Context, status int, sess *cart.Session, message string) {
	if !c.saveSession(ctx, sess) {
		return
	}
	view := cartView(sess)
	view["message"] = message
	sendJSONResponse(ctx, status, view)
}

func (c *Controller) cartError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotInCart):
		sendErrorResponse(ctx, http.StatusNotFound, msgNotInCart)
	case errors.Is(err, models.ErrInvalidQuantity):
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
	default:
		c.log.Error("cart update failed", "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
	}
}

// AddCartItem copies the current product into the cart. Quantity defaults
// to one.
func (c *Controller) AddCartItem(ctx *gin.Context) {
	var body struct {
		ProductID string   `json:"productId" binding:"required"`
		Quantity  *float64 `json:"quantity"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	quantity := 1.0
	if body.Quantity != nil {
		quantity = *body.Quantity
	}

	product, err := c.store.GetProduct(ctx.Request.Context(), body.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to retrieve product")
		return
	}
	if !product.Available {
		sendErrorResponse(ctx, http.StatusConflict, msgProductNotAvailable)
		return
	}

	sess := c.session(ctx)
	if err := sess.Cart.Add(product, quantity); err != nil {
		c.cartError(ctx, err)
		return
	}
	c.respondWithCart(ctx, http.StatusOK, sess, product.Name.In(sess.Language)+" added to cart")
}

func (c *Controller) UpdateCartItem(ctx *gin.Context) {
	var body struct {
		Quantity *float64 `json:"quantity" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	sess := c.session(ctx)
	if err := sess.Cart.UpdateQuantity(ctx.Param("productId"), *body.Quantity); err != nil {
		c.cartError(ctx, err)
		return
	}
	c.respondWithCart(ctx, http.StatusOK, sess, "Cart updated")
}

// StepCartItem moves a line one stepper increment; "direction" is 1 or -1.
func (c *Controller) StepCartItem(ctx *gin.Context) {
	var body struct {
		Direction int `json:"direction"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil || (body.Direction != 1 && body.Direction != -1) {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	sess := c.session(ctx)
	if _, err := sess.Cart.Step(ctx.Param("productId"), body.Direction); err != nil {
		c.cartError(ctx, err)
		return
	}
	c.respondWithCart(ctx, http.StatusOK, sess, "Cart updated")
}

func (c *Controller) RemoveCartItem(ctx *gin.Context) {
	sess := c.session(ctx)
	sess.Cart.Remove(ctx.Param("productId"))
	c.respondWithCart(ctx, http.StatusOK, sess, "Item removed")
}

func (c *Controller) ClearCart(ctx *gin.Context) {
	sess := c.session(ctx)
	sess.Cart.Clear()
	c.respondWithCart(ctx, http.StatusOK, sess, "Cart cleared")
}

func (c *Controller) ToggleLanguage(ctx *gin.Context) {
	sess := c.session(ctx)
	lang := sess.ToggleLanguage()
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"language": lang})
}

func (c *Controller) SetLanguage(ctx *gin.Context) {
	var body struct {
		Language string `json:"language"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil || !c.session(ctx).SetLanguage(body.Language) {
		sendErrorResponse(ctx, http.StatusBadRequest, "language must be en or hi")
		return
	}
	sess := c.session(ctx)
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"language": sess.Language})
}
