package routes

import (
	"log/slog"
	"slices"
	"time"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/Kariqs/goutam-store/middlewares"
	"github.com/Kariqs/goutam-store/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type RouterOptions struct {
	Controller     *controllers.Controller
	Accounts       *accounts.Service
	Sessions       middlewares.SessionStore
	SessionTTL     time.Duration
	SecureCookies  bool
	AllowedOrigins []string
	Logger         *slog.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middlewares.SessionHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middlewares.SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter builds the server with every route installed.
func NewRouter(opts RouterOptions) *gin.Engine {
	c := opts.Controller
	binding.Validator = models.BindingValidator{}
	server := gin.Default()
	server.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	server.Use(c.Metrics().Instrument())
	server.Use(middlewares.Session(opts.Sessions, opts.SessionTTL, opts.SecureCookies, opts.Logger))

	requireAuth := middlewares.RequireAuth(opts.Accounts, opts.Sessions, opts.Logger)
	requireAdmin := middlewares.RequireAdmin(opts.Accounts)

	DefaultRoutes(server, c)
	AuthRoutes(server, c)
	ProductRoutes(server, c)
	CartRoutes(server, c)
	OrderRoutes(server, c, requireAuth)
	UserRoutes(server, c, requireAuth)
	AdminRoutes(server, c, requireAuth, requireAdmin)
	RealtimeRoutes(server, c, requireAuth)
	return server
}
