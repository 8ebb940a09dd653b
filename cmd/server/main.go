package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rollertrack/access-api/internal/api"
	"github.com/rollertrack/access-api/internal/core/secret"
	"github.com/rollertrack/access-api/internal/core/service"
	"github.com/rollertrack/access-api/internal/infrastructure/config"
	mongodb "github.com/rollertrack/access-api/internal/infrastructure/db/mongo"
	redisdb "github.com/rollertrack/access-api/internal/infrastructure/db/redis"
	"github.com/rollertrack/access-api/internal/infrastructure/queue"
	"github.com/rollertrack/access-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core wiring ---
	var codec secret.Codec = secret.NewPBKDF2Codec(cfg.Secrets.PBKDF2Iterations)
	if cfg.Secrets.LegacySHA256 {
		codec = secret.NewSHA256Codec()
	}

	accountRepo := mongodb.NewAccountRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)
	lockCache := redisdb.NewLockCache(rdb)

	auditDispatcher := queue.NewAuditDispatcher(0, auditRepo, log)
	auditDispatcher.Start(ctx)

	policy := service.NewLockoutPolicy(cfg.Lockout.MaxAttempts, cfg.Lockout.LockDuration)
	authService := service.NewAuthService(accountRepo, codec, policy, lockCache, auditDispatcher, log)
	directoryService := service.NewDirectoryService(accountRepo, codec, service.DefaultPasswordPolicy, lockCache, auditDispatcher, log)

	// --- HTTP server ---
	e := api.NewRouter(api.Dependencies{
		Auth:      authService,
		Directory: directoryService,
		Mongo:     db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Logger:    log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("access-control API listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
