package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/medalert/ice-api/internal/cache"
	"github.com/medalert/ice-api/internal/config"
	"github.com/medalert/ice-api/internal/email"
	authHandler "github.com/medalert/ice-api/internal/handler/auth"
	emergencyHandler "github.com/medalert/ice-api/internal/handler/emergency"
	healthHandler "github.com/medalert/ice-api/internal/handler/health"
	profileHandler "github.com/medalert/ice-api/internal/handler/profile"
	"github.com/medalert/ice-api/internal/middleware"
	"github.com/medalert/ice-api/internal/repository"
	"github.com/medalert/ice-api/internal/repository/memory"
	"github.com/medalert/ice-api/internal/repository/postgres"
	"github.com/medalert/ice-api/internal/router"
	authService "github.com/medalert/ice-api/internal/service/auth"
	emergencyService "github.com/medalert/ice-api/internal/service/emergency"
	profileService "github.com/medalert/ice-api/internal/service/profile"
	pkgauth "github.com/medalert/ice-api/pkg/auth"
	"github.com/medalert/ice-api/pkg/logger"
	"github.com/medalert/ice-api/pkg/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	// Repositories: postgres for deployments, in-process KV for
	// single-node runs.
	var (
		userRepo    repository.UserRepository
		profileRepo repository.ProfileRepository
		checks      = map[string]healthHandler.Pinger{}
	)
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		userRepo = postgres.NewUserRepository(db)
		profileRepo = postgres.NewProfileRepository(db)
		checks["database"] = healthHandler.PingerFunc(func(ctx context.Context) error {
			return db.PingContext(ctx)
		})
	case config.StoreDriverMemory:
		store := memory.NewStore()
		userRepo = memory.NewUserRepository(store)
		profileRepo = memory.NewProfileRepository(store)
	}

	// QR cache and session denylist: redis when configured, otherwise
	// in-process.
	var (
		qrCache    cache.ProfileCache
		tokenStore repository.TokenStore
	)
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()

		qrCache = cache.NewRedisProfileCache(client, cfg.Redis.CacheTTL)
		tokenStore = cache.NewRedisTokenStore(client)
		checks["redis"] = healthHandler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		qrCache = cache.NewMemoryProfileCache(cfg.Redis.CacheTTL)
		tokenStore = memory.NewTokenStore()
	}

	jwtSvc := pkgauth.NewJWTService(pkgauth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})
	hasher := security.NewBcryptHasher(12)

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		emailSvc = email.NewNoopService()
	}

	authSvc := authService.NewService(userRepo, profileRepo, tokenStore, jwtSvc, hasher, emailSvc, cfg.Public.BaseURL)
	profileSvc := profileService.NewService(profileRepo, qrCache, cfg.Public.BaseURL)
	emergencySvc := emergencyService.NewService(profileRepo, qrCache)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.New(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		profileHandler.NewHandler(profileSvc),
		emergencyHandler.NewHandler(emergencySvc),
		healthHandler.NewHandler(checks),
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORS: middleware.CORSConfig{
				AllowedOrigins: cfg.CORS.AllowedOrigins,
				AllowedMethods: cfg.CORS.AllowedMethods,
				AllowedHeaders: cfg.CORS.AllowedHeaders,
			},
			Timeout: cfg.Server.RequestTimeout,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
