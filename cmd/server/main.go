package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"competitor_backend/internal/app/di"
	"competitor_backend/internal/app/router"
	impacthandler "competitor_backend/internal/feature/impact/transport/handler"
	orghandler "competitor_backend/internal/feature/organizations/transport/handler"
	updhandler "competitor_backend/internal/feature/updates/transport/handler"
	"competitor_backend/internal/platform/config"
	infradb "competitor_backend/internal/platform/db"
	platformhandler "competitor_backend/internal/platform/http/handler"
	"competitor_backend/internal/platform/logging"
	infraredis "competitor_backend/internal/platform/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := infradb.Open(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Redis（任意）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	c, err := di.NewContainer(ctx, cfg, db, rdb)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	checks := map[string]platformhandler.Check{"database": sqlDB.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	engine := router.NewRouter(router.Handlers{
		Health:        platformhandler.NewHealthHandler(checks),
		Organizations: orghandler.NewOrganizationHandler(c.Organizations),
		Updates:       updhandler.NewUpdatesHandler(c.Fetch, c.Query),
		Impact:        impacthandler.NewImpactHandler(c.Impact),
	}, c.Metrics, cfg.Auth.JWTSecret)

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("JWT_SECRET is not set; every /v1 request will be rejected")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
