package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/checkout"
	"github.com/Kariqs/goutam-store/controllers"
	"github.com/Kariqs/goutam-store/initializers"
	"github.com/Kariqs/goutam-store/middlewares"
	"github.com/Kariqs/goutam-store/realtime"
	"github.com/Kariqs/goutam-store/routes"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := initializers.LoadEnv()
	gin.SetMode(cfg.GinMode)
	logger := initializers.NewLogger(cfg, os.Stdout)
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initializers.ConnectStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to the store: ", err)
	}
	defer db.Close(context.Background())

	rdb, err := initializers.ConnectToRedis(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}
	defer rdb.Close()

	hub := realtime.NewHub(logger)
	st := store.WithEvents(db, hub)
	sessions := cart.NewSessionRepository(rdb, cfg.SessionTTL)
	accountService := accounts.NewService(st, accounts.NewRedisResetTokens(rdb), accounts.Config{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}, logger)

	mailer, err := utils.NewMailer(utils.MailConfig{
		From:      cfg.FromEmail,
		Password:  cfg.FromEmailPassword,
		SMTPHost:  cfg.FromEmailSMTP,
		Address:   cfg.SMTPAddress,
		StoreName: cfg.StoreName,
	})
	if err != nil {
		log.Fatal("Failed to load email templates: ", err)
	}

	var images *utils.ImageStore
	if cfg.S3Bucket != "" {
		if images, err = utils.NewS3ImageStore(ctx, cfg.S3Bucket, hub); err != nil {
			log.Fatal("Failed to configure AWS: ", err)
		}
	} else {
		logger.Warn("S3_BUCKET not set, image uploads disabled")
	}

	metrics := middlewares.NewMetrics("goutam")
	checkoutService := checkout.NewService(checkout.Options{
		Orders:    st,
		Gateway:   initializers.NewPaymentGateway(cfg),
		Currency:  cfg.Currency,
		StoreName: cfg.StoreName,
		Observers: []checkout.OrderObserver{metrics, utils.NewOrderMailer(mailer, st, cfg.FrontendURL, logger)},
		Logger:    logger,
	})
	if checkoutService.GatewayName() == "" {
		logger.Warn("no payment gateway configured, only cash orders are accepted")
	}

	go func() {
		enforcer := accounts.NewDisableEnforcer(hub, sessions, cart.NoticeAccountDisabled, logger)
		if err := enforcer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("disable enforcer stopped", "error", err)
		}
	}()

	controller := controllers.NewController(controllers.Options{
		Store:    st,
		Sessions: sessions,
		Accounts: accountService,
		Checkout: checkoutService,
		Hub:      hub,
		Images:   images,
		Mailer:   mailer,
		Metrics:  metrics,
		Config:   cfg,
		Logger:   logger,
	})
	server := routes.NewRouter(routes.RouterOptions{
		Controller:     controller,
		Accounts:       accountService,
		Sessions:       sessions,
		SessionTTL:     cfg.SessionTTL,
		SecureCookies:  cfg.GinMode == gin.ReleaseMode,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server}
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver, "gateway", checkoutService.GatewayName())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: ", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
