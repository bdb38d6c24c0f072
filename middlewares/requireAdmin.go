package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
)

type AdminAuthorizer interface {
	AuthorizeAdmin(ctx context.Context, userID string) (models.UserProfile, error)
}

// RequireAdmin must run after RequireAuth. The role is checked against the
// store on every request, so a demoted admin loses access immediately.
func RequireAdmin(auth AdminAuthorizer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, exists := CurrentUser(ctx)
		if !exists {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found in context", "redirect": "/login"})
			return
		}

		admin, err := auth.AuthorizeAdmin(ctx.Request.Context(), user.ID)
		if errors.Is(err, accounts.ErrAccessDenied) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required", "redirect": "/"})
			return
		}
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}

		ctx.Set(userKey, admin)
		ctx.Next()
	}
}
