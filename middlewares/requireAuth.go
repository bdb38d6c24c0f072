package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-gonic/gin"
)

// Authenticator resolves the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.UserProfile, error)
	CurrentUser(ctx context.Context, userID string) (models.UserProfile, error)
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAuth accepts a bearer token or a signed-in session and puts the
// current profile in the context under "user". A disabled account is signed
// out of the session and refused.
func RequireAuth(auth Authenticator, sessions SessionStore, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx *gin.Context) {
		sess := CurrentSession(ctx)
		reqCtx := ctx.Request.Context()

		var (
			user models.UserProfile
			err  error
		)
		switch token := bearerToken(ctx); {
		case token != "":
			user, err = auth.Authenticate(reqCtx, token)
		case sess != nil && sess.Authenticated:
			user, err = auth.CurrentUser(reqCtx, sess.UserID)
		default:
			err = accounts.ErrInvalidToken
		}

		if err != nil {
			if errors.Is(err, accounts.ErrAccountDisabled) && sess != nil && sess.Authenticated {
				sess.Logout()
				sess.Notice = cart.NoticeAccountDisabled
				if saveErr := sessions.Save(reqCtx, sess); saveErr != nil {
					logger.Error("failed to sign out disabled session", "session_id", sess.ID, "error", saveErr)
				}
			}
			switch {
			case errors.Is(err, accounts.ErrAccountDisabled):
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error(), "notice": cart.NoticeAccountDisabled, "redirect": "/login"})
			case errors.Is(err, accounts.ErrInvalidToken):
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Please log in to continue", "redirect": "/login"})
			default:
				logger.Error("failed to resolve user", "error", err)
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			}
			return
		}

		if sess != nil && (!sess.Authenticated || sess.UserID != user.ID || sess.Role != user.Role) {
			if sess.Authenticated && sess.UserID != user.ID {
				sess.Logout()
			}
			sess.Login(user.ID, user.Role)
			if err := sessions.Save(reqCtx, sess); err != nil {
				logger.Error("failed to save session", "session_id", sess.ID, "error", err)
			}
		}

		ctx.Set(userKey, user)
		ctx.Next()
	}
}

// CurrentUser returns the profile set by RequireAuth.
func CurrentUser(ctx *gin.Context) (models.UserProfile, bool) {
	v, ok := ctx.Get(userKey)
	if !ok {
		return models.UserProfile{}, false
	}
	u, ok := v.(models.UserProfile)
	return u, ok
}
