package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sirahabazaar/dispatch-system/internal/api"
	"github.com/sirahabazaar/dispatch-system/internal/core/ports"
	"github.com/sirahabazaar/dispatch-system/internal/core/service"
	"github.com/sirahabazaar/dispatch-system/internal/infrastructure/config"
	mongodb "github.com/sirahabazaar/dispatch-system/internal/infrastructure/db/mongo"
	redisdb "github.com/sirahabazaar/dispatch-system/internal/infrastructure/db/redis"
	"github.com/sirahabazaar/dispatch-system/internal/infrastructure/notify"
	"github.com/sirahabazaar/dispatch-system/internal/infrastructure/queue"
	"github.com/sirahabazaar/dispatch-system/pkg/logger"
)

func main() {
	// .env is optional; real deployments rely on the environment.
	if err := godotenv.Load(); err != nil {
		// nothing to do, environment variables take over
		_ = err
	}

	log := logger.Init(logger.Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("ENV") != "production",
	})

	cfg := config.Load(log)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	roundRepo := mongodb.NewRoundRepository(db)
	orderRepo := mongodb.NewOrderRepository(db)
	partnerRepo := mongodb.NewPartnerRepository(db)
	attemptRepo := mongodb.NewAttemptRepository(db)
	notificationRepo := mongodb.NewNotificationRepository(db)
	zoneRepo := mongodb.NewZoneRepository(db)
	storeRepo := mongodb.NewStoreRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	if err := roundRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("round index creation failed")
	}
	if err := attemptRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("attempt index creation failed")
	}

	// --- Notification channels ---
	httpClient := &http.Client{Timeout: cfg.Notify.ChannelTimeout}
	channels := []ports.NotificationChannel{
		notify.NewMobilePushChannel(cfg.Notify.FCMEndpoint, cfg.Notify.FCMServerKey, httpClient, logger.Component("fcm")),
		notify.NewWebPushChannel(cfg.Notify.WebPushEndpoint, httpClient, logger.Component("webpush")),
		notify.NewInAppChannel(notificationRepo, logger.Component("inapp")),
	}

	// --- Services ---
	broadcaster := service.NewBroadcastService(channels, attemptRepo, cfg.Notify.ChannelTimeout, logger.Component("broadcast"))
	guard := redisdb.NewClaimGuard(rdb)
	dispatchService := service.NewDispatchService(
		roundRepo,
		orderRepo,
		partnerRepo,
		attemptRepo,
		notificationRepo,
		broadcaster,
		guard,
		cfg.Dispatch.RoundTTL,
		logger.Component("dispatch"),
	)
	quoteService := service.NewQuoteService(zoneRepo, orderRepo, logger.Component("quotes"))
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)

	// --- Background workers ---
	dispatcher := queue.NewDispatcher(cfg.Dispatch.Workers, dispatchService, logger.Component("queue"))
	dispatchService.SetQueue(dispatcher)
	dispatcher.Start(ctx)

	expirer := queue.NewExpirer(dispatchService, cfg.Dispatch.SweepInterval, logger.Component("expirer"))
	go expirer.Start(ctx)

	// --- HTTP server ---
	e := api.NewRouter(api.RouterDeps{
		DB:        db,
		Redis:     rdb,
		Dispatch:  dispatchService,
		Quotes:    quoteService,
		Stores:    storeRepo,
		Auth:      authService,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
