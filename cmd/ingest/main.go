package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"competitor_backend/internal/app/di"
	updusecase "competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/config"
	infradb "competitor_backend/internal/platform/db"
	"competitor_backend/internal/platform/logging"
	infraredis "competitor_backend/internal/platform/redis"
)

func main() {
	var (
		params  updusecase.FetchParams
		orgID   uint
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "ingest",
		Short:        "Fetch, deduplicate and store updates for tracked organizations",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.OrganizationID = orgID
			return run(cmd.Context(), params, timeout)
		},
	}
	cmd.Flags().UintVar(&orgID, "org", 0, "organization id (0 = all organizations)")
	cmd.Flags().IntVar(&params.Days, "days", 0, "look-back window in days (0 = configured default)")
	cmd.Flags().IntVar(&params.MaxResults, "max-results", 0, "max items per organization (0 = configured default)")
	cmd.Flags().BoolVar(&params.IncludeSocial, "include-social", false, "add social items from social-capable connectors")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall deadline")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, p updusecase.FetchParams, timeout time.Duration) error {
	cfg := config.Load()
	slog.SetDefault(logging.New(cfg.Logging.Level))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := infradb.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err == nil {
		rdb = tmp
		defer rdb.Close()
	}

	c, err := di.NewContainer(ctx, cfg, db, rdb)
	if err != nil {
		return err
	}

	result, err := c.Fetch.FetchUpdates(ctx, p)
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return fmt.Errorf("write result: %w", encErr)
		}
	}
	if err != nil {
		slog.Error("ingest failed", "error", err)
		return err
	}
	slog.Info("ingest ok", "inserted", result.InsertedCount, "organizations", len(result.PerOrganization))
	return nil
}
