package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kariqs/goutam-store/ledger"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func formatMoney(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

// formatQuantity drops trailing zeros: 2, 0.5, 1.25.
func formatQuantity(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", q), "0"), ".")
}

// userDirectory indexes every profile by id.
func (c *Controller) userDirectory(ctx *gin.Context) (map[string]models.UserProfile, error) {
	users, err := c.store.ListUsers(ctx.Request.Context())
	if err != nil {
		return nil, err
	}
	dir := make(map[string]models.UserProfile, len(users))
	for _, u := range users {
		dir[u.ID] = u
	}
	return dir, nil
}

// GetMyKhata is the caller's own ledger, one group per day.
func (c *Controller) GetMyKhata(ctx *gin.Context) {
	orders, err := c.store.ListOrdersByUser(ctx.Request.Context(), c.user(ctx).ID)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch orders")
		return
	}
	ledger.SortNewestFirst(orders)

	days := ledger.GroupByDate(orders, c.loc, c.language(ctx, c.session(ctx)))
	if days == nil {
		days = []ledger.DateGroup{}
	}
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(decimal.NewFromFloat(d.Total))
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"days": days, "total": total.Round(2).InexactFloat64()})
}

func (c *Controller) adminLedger(ctx *gin.Context) ([]ledger.UserGroup, bool) {
	orders, err := c.store.ListOrders(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch orders")
		return nil, false
	}
	users, err := c.userDirectory(ctx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch users")
		return nil, false
	}
	ledger.SortNewestFirst(orders)
	return ledger.FilterByUserName(ledger.GroupByUser(orders, users), ctx.Query("search")), true
}

// AdminGetKhata groups every order by customer; each customer's orders are
// further split by day. ?search filters on the customer name.
func (c *Controller) AdminGetKhata(ctx *gin.Context) {
	groups, ok := c.adminLedger(ctx)
	if !ok {
		return
	}

	type customerLedger struct {
		ledger.UserGroup
		Days []ledger.DateGroup `json:"days"`
	}
	lang := c.language(ctx, c.session(ctx))
	out := make([]customerLedger, 0, len(groups))
	for _, g := range groups {
		out = append(out, customerLedger{UserGroup: g, Days: ledger.GroupByDate(g.Orders, c.loc, lang)})
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"customers": out})
}

func (c *Controller) ExportKhata(ctx *gin.Context) {
	groups, ok := c.adminLedger(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ledger.WriteWorkbook(&buf, groups, c.loc); err != nil {
		c.log.Error("khata export failed", "error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to export khata", err)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="khata.xlsx"`)
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
