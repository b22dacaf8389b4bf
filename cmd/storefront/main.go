package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/wencuts/masterclass/internal/catalog"
	"github.com/wencuts/masterclass/internal/config"
	"github.com/wencuts/masterclass/internal/handlers"
	"github.com/wencuts/masterclass/internal/logger"
	"github.com/wencuts/masterclass/internal/middlewares"
	"github.com/wencuts/masterclass/internal/playback"
	"github.com/wencuts/masterclass/internal/purchase"
	"github.com/wencuts/masterclass/internal/session"
	"github.com/wencuts/masterclass/internal/store"
	"github.com/wencuts/masterclass/internal/upstream"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Wencut's Master Class storefront")

	// Open local state store
	state, err := store.Open(cfg.StateDir)
	if err != nil {
		logger.Logger.Fatal("Failed to open state store", zap.Error(err))
		os.Exit(1)
	}
	defer state.Close()

	// Initialize upstream API clients
	client := upstream.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger.Logger)
	authAPI := upstream.NewAuthAPI(client)
	userAPI := upstream.NewUserAPI(client)
	courseAPI := upstream.NewCourseAPI(client)
	paymentAPI := upstream.NewPaymentAPI(client)

	// Initialize services
	sessions := session.NewService(authAPI, userAPI, state, logger.Logger)
	courses := catalog.NewService(courseAPI, state, logger.Logger)

	relay := playback.NewClientRelay()
	player := playback.NewBootstrap(cfg.API.StreamingURL, relay.Factory(), logger.Logger)
	defer player.Stop()

	gateway := purchase.NewCallbackGateway()
	flow := purchase.NewFlow(paymentAPI, gateway, sessions, courses, purchase.Config{
		KeyID:        cfg.Checkout.KeyID,
		MerchantName: cfg.Checkout.MerchantName,
		MerchantLogo: cfg.Checkout.MerchantLogo,
	}, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions, logger.Logger)
	catalogHandler := handlers.NewCatalogHandler(courses, sessions, logger.Logger)
	playbackHandler := handlers.NewPlaybackHandler(player, relay, courses, sessions, logger.Logger)
	purchaseHandler := handlers.NewPurchaseHandler(flow, gateway, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(1 * 1024 * 1024)) // 1MB

	// OTP sends cost money; rate limit them tighter than the rest
	otpLimiter := httprate.LimitByIP(5, time.Minute)

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, otpLimiter)
		catalogHandler.RegisterRoutes(r)
		playbackHandler.RegisterRoutes(r)
		purchaseHandler.RegisterRoutes(r)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
