package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/b2bplatform/b2b-backend/internal/api"
	"github.com/b2bplatform/b2b-backend/internal/core/service"
	"github.com/b2bplatform/b2b-backend/internal/infrastructure/config"
	mongodb "github.com/b2bplatform/b2b-backend/internal/infrastructure/db/mongo"
	redisdb "github.com/b2bplatform/b2b-backend/internal/infrastructure/db/redis"
	"github.com/b2bplatform/b2b-backend/internal/infrastructure/queue"
	"github.com/b2bplatform/b2b-backend/internal/infrastructure/storage"
	"github.com/b2bplatform/b2b-backend/internal/security/token"
	"github.com/b2bplatform/b2b-backend/pkg/logger"
)

// @title        B2B Backend API
// @version      1.0
// @description  Authentication and catalog image service for the B2B platform.
// @BasePath     /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "b2b-backend",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	store, err := storage.NewLocalStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory unavailable")
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	customerRepo := mongodb.NewCustomerRepository(db)
	imageRepo := mongodb.NewProductImageRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":          userRepo.EnsureIndexes,
		"customers":      customerRepo.EnsureIndexes,
		"product_images": imageRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Services ---
	issuer := token.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	policy := service.UploadPolicy{
		AllowedExtensions: cfg.Upload.Extensions(),
		MaxSizeMB:         cfg.Upload.MaxSizeMB,
	}

	reclaimer := queue.NewReclaimer(0, store, log)
	reclaimer.Start(ctx)

	imageCache := redisdb.NewImageListCache(rdb, log)
	authService := service.NewAuthService(userRepo, customerRepo, issuer, store, reclaimer, policy, log)
	imageService := service.NewProductImageService(imageRepo, store, imageCache, reclaimer, policy, log)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, authService, imageService, issuer, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
