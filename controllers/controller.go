package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/checkout"
	"github.com/Kariqs/goutam-store/initializers"
	"github.com/Kariqs/goutam-store/middlewares"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Options struct {
	Store    store.Store
	Sessions *cart.SessionRepository
	Accounts *accounts.Service
	Checkout *checkout.Service
	Hub      *realtime.Hub
	Images   *utils.ImageStore
	Mailer   *utils.Mailer
	Metrics  *middlewares.Metrics
	Config   initializers.Config
	Logger   *slog.Logger
}

// Controller holds the services every HTTP handler needs.
type Controller struct {
	store    store.Store
	sessions *cart.SessionRepository
	accounts *accounts.Service
	checkout *checkout.Service
	hub      *realtime.Hub
	images   *utils.ImageStore
	mailer   *utils.Mailer
	metrics  *middlewares.Metrics
	cfg      initializers.Config
	loc      *time.Location
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = middlewares.NewMetrics("goutam")
	}
	c := &Controller{
		store:    opts.Store,
		sessions: opts.Sessions,
		accounts: opts.Accounts,
		checkout: opts.Checkout,
		hub:      opts.Hub,
		images:   opts.Images,
		mailer:   opts.Mailer,
		metrics:  opts.Metrics,
		cfg:      opts.Config,
		loc:      opts.Config.Location(),
		log:      opts.Logger,
	}
	c.upgrader = websocket.Upgrader{CheckOrigin: c.checkOrigin}
	return c
}

// Metrics exposes the collectors so the router can install them.
func (c *Controller) Metrics() *middlewares.Metrics { return c.metrics }

func (c *Controller) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(c.cfg.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(c.cfg.AllowedOrigins, origin)
}

// session returns the request's session. The Session middleware is installed
// on every route, so a nil session is a wiring bug.
func (c *Controller) session(ctx *gin.Context) *cart.Session {
	sess := middlewares.CurrentSession(ctx)
	if sess == nil {
		sess = cart.NewSession("")
		c.log.Warn("request without session middleware", "path", ctx.FullPath())
	}
	return sess
}

// saveSession persists sess and answers 500 when that fails.
func (c *Controller) saveSession(ctx *gin.Context, sess *cart.Session) bool {
	if err := c.sessions.Save(ctx.Request.Context(), sess); err != nil {
		c.log.Error("failed to save session", "session_id", sess.ID, "error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return false
	}
	return true
}

// user returns the profile RequireAuth resolved.
func (c *Controller) user(ctx *gin.Context) models.UserProfile {
	u, _ := middlewares.CurrentUser(ctx)
	return u
}

// language is the query override or the session's language.
func (c *Controller) language(ctx *gin.Context, sess *cart.Session) string {
	switch lang := ctx.Query("lang"); lang {
	case cart.LangEnglish, cart.LangHindi:
		return lang
	}
	return sess.Language
}

// bindJSON decodes the request body into v. Rule violations are answered
// with their problems, anything else with a plain invalid-input message.
func bindJSON(ctx *gin.Context, v any) bool {
	err := ctx.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var invalid *models.ValidationError
	if errors.As(err, &invalid) {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": invalid.Problems})
		return false
	}
	sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
	return false
}

// handleStoreError maps store and validation errors to responses.
func (c *Controller) handleStoreError(ctx *gin.Context, err error, message string) {
	var invalid *models.ValidationError
	switch {
	case errors.As(err, &invalid):
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{"message": msgInvalidInput, "errors": invalid.Problems})
	case errors.Is(err, store.ErrNotFound):
		sendErrorResponse(ctx, http.StatusNotFound, msgNotFound)
	case errors.Is(err, store.ErrDuplicate):
		sendErrorResponse(ctx, http.StatusConflict, msgAlreadyExists)
	default:
		c.log.Error(message, "path", ctx.FullPath(), "error", err)
		respondWithError(ctx, http.StatusInternalServerError, message, err)
	}
}
