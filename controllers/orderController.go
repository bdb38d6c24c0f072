package controllers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/Kariqs/goutam-store/checkout"
	"github.com/Kariqs/goutam-store/ledger"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/gin-gonic/gin"
)

//go:embed templates/invoice.html
var invoiceFS embed.FS

var invoiceTemplate = template.Must(template.New("invoice.html").Funcs(template.FuncMap{
	"money": func(v float64) string { return formatMoney(v) },
	"mul":   func(a, b float64) float64 { return a * b },
	"qty":   formatQuantity,
}).ParseFS(invoiceFS, "templates/invoice.html"))

// checkoutError maps checkout failures to responses. Authorization problems
// carry a redirect for the client.
func (c *Controller) checkoutError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrAuthRequired):
		sendJSONResponse(ctx, http.StatusUnauthorized, gin.H{"message": err.Error(), "redirect": "/login"})
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrNothingToPay):
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrGatewayNotConfigured):
		sendErrorResponse(ctx, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, checkout.ErrPaymentCancelled):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrNoPendingCheckout):
		sendErrorResponse(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrPaymentVerification):
		sendErrorResponse(ctx, http.StatusPaymentRequired, checkout.ErrPaymentVerification.Error())
	case errors.Is(err, checkout.ErrPaymentFailed):
		sendErrorResponse(ctx, http.StatusBadGateway, checkout.ErrPaymentFailed.Error())
	default:
		sendErrorResponse(ctx, http.StatusInternalServerError, checkout.ErrOrderFailed.Error())
	}
}

// PlaceCashOrder turns the cart into a Cash order.
func (c *Controller) PlaceCashOrder(ctx *gin.Context) {
	sess := c.session(ctx)
	order, err := c.checkout.PlaceCashOrder(ctx.Request.Context(), sess)
	if err != nil {
		c.checkoutError(ctx, err)
		return
	}
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// BeginPayment opens a payment with the configured gateway and returns the
// widget settings.
func (c *Controller) BeginPayment(ctx *gin.Context) {
	sess := c.session(ctx)
	widget, err := c.checkout.BeginGatewayCheckout(ctx.Request.Context(), sess, c.user(ctx))
	if err != nil {
		c.checkoutError(ctx, err)
		return
	}
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"checkout": widget})
}

func (c *Controller) ConfirmPayment(ctx *gin.Context) {
	var confirmation checkout.Confirmation
	if err := ctx.ShouldBindJSON(&confirmation); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	sess := c.session(ctx)
	order, err := c.checkout.ConfirmGatewayCheckout(ctx.Request.Context(), sess, confirmation)
	if err != nil {
		c.checkoutError(ctx, err)
		return
	}
	if !c.saveSession(ctx, sess) {
		return
	}
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Payment successful", "order": order})
}

// CancelPayment is called when the shopper closes the payment widget.
func (c *Controller) CancelPayment(ctx *gin.Context) {
	sess := c.session(ctx)
	err := c.checkout.CancelGatewayCheckout(sess)
	if !c.saveSession(ctx, sess) {
		return
	}
	c.checkoutError(ctx, err)
}

// GetMyOrders lists the caller's orders, newest first.
func (c *Controller) GetMyOrders(ctx *gin.Context) {
	orders, err := c.store.ListOrdersByUser(ctx.Request.Context(), c.user(ctx).ID)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch orders")
		return
	}
	ledger.SortNewestFirst(orders)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": nonNilOrders(orders)})
}

// GetInvoice returns one order to its owner or an admin, as JSON or, with
// ?format=html or an HTML Accept header, as a printable page.
func (c *Controller) GetInvoice(ctx *gin.Context) {
	user := c.user(ctx)
	order, err := c.store.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to retrieve order")
		return
	}
	if order.UserID != user.ID && !user.IsAdmin() {
		sendErrorResponse(ctx, http.StatusNotFound, msgNotFound)
		return
	}

	customer := user
	if order.UserID != user.ID {
		customer, err = c.store.GetUser(ctx.Request.Context(), order.UserID)
		if errors.Is(err, store.ErrNotFound) {
			customer = models.UnknownUser(order.UserID)
		} else if err != nil {
			c.handleStoreError(ctx, err, "Unable to retrieve customer")
			return
		}
	}

	if ctx.Query("format") != "html" && !strings.Contains(ctx.GetHeader("Accept"), "text/html") {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order, "customer": customer})
		return
	}

	lang := c.language(ctx, c.session(ctx))
	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	err = invoiceTemplate.Execute(ctx.Writer, gin.H{
		"StoreName": c.cfg.StoreName,
		"Order":     order,
		"Customer":  customer,
		"Date":      ledger.DateLabel(order.Date, c.loc, lang),
		"Lang":      lang,
	})
	if err != nil {
		c.log.Error("invoice render failed", "order_id", order.OrderID, "error", err)
	}
}

// AdminGetOrders lists every order, newest first, with the customer's name.
func (c *Controller) AdminGetOrders(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	orders, err := c.store.ListOrders(reqCtx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch orders")
		return
	}
	ledger.SortNewestFirst(orders)

	users, err := c.userDirectory(ctx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch users")
		return
	}

	type orderRow struct {
		models.Order
		CustomerName string `json:"customerName"`
	}
	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		name := models.UnknownUser(o.UserID).Name
		if u, ok := users[o.UserID]; ok {
			name = u.Name
		}
		rows = append(rows, orderRow{Order: o, CustomerName: name})
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": rows})
}

func (c *Controller) UpdateOrderStatus(ctx *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}
	status, err := models.ParseOrderStatus(body.Status)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid order status", err)
		return
	}

	order, err := c.store.UpdateOrderStatus(ctx.Request.Context(), ctx.Param("id"), status)
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update order")
		return
	}
	c.log.Info("order status updated", "order_id", order.OrderID, "status", status, "by", c.user(ctx).ID)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

func nonNilOrders(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	return orders
}
