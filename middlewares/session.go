package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kariqs/goutam-store/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "goutam_session"
	SessionHeader = "X-Session-ID"

	sessionKey = "session"
	userKey    = "user"
)

// SessionStore loads and persists session state.
type SessionStore interface {
	Load(ctx context.Context, id string) (*cart.Session, error)
	Save(ctx context.Context, s *cart.Session) error
}

// Session attaches the caller's session to the request. The id is taken from
// the X-Session-ID header or the session cookie; a new one is issued when
// neither carries a valid id. Handlers that change the session save it
// themselves before responding.
func Session(sessions SessionStore, ttl time.Duration, secure bool, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(SessionHeader)
		if id == "" {
			id, _ = ctx.Cookie(SessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = cart.NewSessionID()
		}

		sess, err := sessions.Load(ctx.Request.Context(), id)
		if err != nil {
			logger.Error("failed to load session", "session_id", id, "error", err)
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Unable to load session"})
			return
		}

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(SessionCookie, sess.ID, int(ttl.Seconds()), "/", "", secure, true)
		ctx.Header(SessionHeader, sess.ID)
		ctx.Set(sessionKey, sess)
		ctx.Next()
	}
}

// CurrentSession returns the session attached by Session, or nil.
func CurrentSession(ctx *gin.Context) *cart.Session {
	v, ok := ctx.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*cart.Session)
	return sess
}
