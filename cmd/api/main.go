package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/monologue-app/monologue-backend/api/routes"
	"github.com/monologue-app/monologue-backend/internal/accounts"
	"github.com/monologue-app/monologue-backend/internal/avatars"
	"github.com/monologue-app/monologue-backend/internal/mailer"
	"github.com/monologue-app/monologue-backend/pkg/config"
	"github.com/monologue-app/monologue-backend/pkg/db"
	"github.com/monologue-app/monologue-backend/pkg/logger"
	"github.com/monologue-app/monologue-backend/pkg/migrate"
	"github.com/monologue-app/monologue-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional; without it icon caching falls back to disk only.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, icon cache disabled")
	}

	mailClient := mailer.New(cfg.Sendgrid, logg)
	if mailClient == nil {
		logg.Warn(context.Background(), "sendgrid not configured, mail delivery disabled")
	}

	accountsRepo := accounts.NewRepository(dbClient.DB())
	var accountsMailer accounts.Mailer
	if mailClient != nil {
		accountsMailer = mailClient
	}
	accountsService := accounts.NewService(accountsRepo, accountsMailer, cfg, logg)

	var iconCache avatars.ByteCache
	if redisClient != nil {
		iconCache = redisClient
	}
	avatarsService := avatars.NewService(cfg.Media, iconCache, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, accountsService, avatarsService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
