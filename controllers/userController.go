package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/catalog"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
)

// AdminGetUsers lists profiles; ?search matches the name or the id.
func (c *Controller) AdminGetUsers(ctx *gin.Context) {
	users, err := c.store.ListUsers(ctx.Request.Context())
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch users")
		return
	}

	term := strings.ToLower(strings.TrimSpace(ctx.Query("search")))
	out := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		if term == "" || strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.ID), term) {
			out = append(out, u)
		}
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"users": out})
}

// SetUserDisabled enables or disables another account. Disabling signs the
// user out everywhere through the account watcher.
func (c *Controller) SetUserDisabled(ctx *gin.Context) {
	var body struct {
		Disabled *bool `json:"disabled" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	user, err := c.accounts.SetUserDisabled(ctx.Request.Context(), c.user(ctx).ID, ctx.Param("id"), *body.Disabled)
	if errors.Is(err, accounts.ErrSelfDisable) {
		sendErrorResponse(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update user")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User updated", "user": user})
}

// GetDashboard returns the counts shown on the admin landing page.
func (c *Controller) GetDashboard(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	products, err := c.store.ListProducts(reqCtx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch products")
		return
	}
	users, err := c.store.CountUsers(reqCtx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to count users")
		return
	}
	orders, err := c.store.ListOrders(reqCtx)
	if err != nil {
		c.handleStoreError(ctx, err, "Unable to fetch orders")
		return
	}

	byStatus := make(map[models.OrderStatus]int)
	for _, o := range orders {
		byStatus[o.Status]++
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"products":          len(products),
		"availableProducts": len(catalog.Filter(products, catalog.Query{})),
		"users":             users,
		"orders":            len(orders),
		"ordersByStatus":    byStatus,
	})
}

func (c *Controller) GetProfile(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": c.user(ctx)})
}

// UpdateProfile changes the caller's name, address or photo. Role and the
// disabled flag cannot be set here.
func (c *Controller) UpdateProfile(ctx *gin.Context) {
	var update models.ProfileUpdate
	if !bindJSON(ctx, &update) {
		return
	}

	user, err := c.accounts.UpdateProfile(ctx.Request.Context(), c.user(ctx).ID, update)
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update profile")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

// UploadProfilePhoto stores the "photo" form file under the user's folder
// and points the profile at it. Progress is published on the uploads feed.
func (c *Controller) UploadProfilePhoto(ctx *gin.Context) {
	if !c.images.Configured() {
		respondWithError(ctx, http.StatusServiceUnavailable, "Image uploads are not configured", nil)
		return
	}
	file, err := ctx.FormFile("photo")
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "No file uploaded", err)
		return
	}
	if file.Size > maxImageSize {
		respondWithError(ctx, http.StatusBadRequest, "Image must be 5 MB or smaller", nil)
		return
	}
	f, err := file.Open()
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, "Invalid form data", err)
		return
	}
	defer f.Close()

	me := c.user(ctx)
	url, err := c.images.Upload(ctx.Request.Context(), c.images.UserImageKey(me.ID, file.Filename), f, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		c.log.Error("profile photo upload failed", "user_id", me.ID, "error", err)
		respondWithError(ctx, http.StatusBadGateway, "Failed to upload image", err)
		return
	}

	user, err := c.accounts.UpdateProfile(ctx.Request.Context(), me.ID, models.ProfileUpdate{PhotoURL: &url})
	if err != nil {
		c.handleStoreError(ctx, err, "Failed to update profile")
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Photo updated", "url": url, "user": user})
}
