package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"competitor_backend/internal/feature/impact/adapters/gemini"
	impactusecase "competitor_backend/internal/feature/impact/usecase"
	orgadapters "competitor_backend/internal/feature/organizations/adapters"
	orgusecase "competitor_backend/internal/feature/organizations/usecase"
	updadapters "competitor_backend/internal/feature/updates/adapters"
	updusecase "competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/cache"
	"competitor_backend/internal/platform/config"
	infrahttp "competitor_backend/internal/platform/http"
	"competitor_backend/internal/platform/metrics"
	"competitor_backend/internal/platform/profile"
)

const profileTimeout = 10 * time.Second

// Container holds the wired usecases shared by cmd/server and cmd/ingest.
type Container struct {
	Metrics       *metrics.Recorder
	Organizations *orgusecase.OrganizationUsecase
	Fetch         *updusecase.FetchUsecase
	Query         *updusecase.QueryUsecase
	Impact        *impactusecase.ImpactUsecase
}

// NewContainer wires repositories, connectors, the optional AI client and every usecase.
// rdb may be nil, in which case update queries are not cached.
func NewContainer(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client) (*Container, error) {
	rec := metrics.NewRecorder()

	orgRepo := orgadapters.NewOrganizationRepository(db)
	updateRepo := cache.NewCachingUpdateRepository(rdb, cfg.Redis.TTL, updadapters.NewUpdateRepository(db), "updates")
	runRepo := updadapters.NewTrackingRepository(db)
	statsRepo := updadapters.NewStatsRepository(db)

	ai, err := NewAI(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	// keep the interfaces nil when AI is off; a typed nil would look configured
	var (
		judge      updusecase.SentimentJudge
		summarizer updusecase.ArticleSummarizer
		capability impactusecase.AICapability
	)
	if ai != nil {
		capability = ai
		if cfg.AI.SentimentEnabled {
			judge = ai
		}
		if cfg.AI.SummaryEnabled {
			summarizer = ai
		}
	}

	fetcher := updusecase.NewFallbackFetcher(
		NewConnectors(cfg.Connectors),
		updusecase.FallbackConfig{
			RetryBackoff: cfg.Fetch.RetryBackoff,
			MaxBackoff:   cfg.Fetch.MaxBackoff,
			CallTimeout:  cfg.Fetch.CallTimeout,
		},
		rec,
	)

	analyzer := impactusecase.NewAnalyzer(capability, impactusecase.AnalyzerOptions{
		VelocityBaseline: cfg.Analysis.VelocityBaseline,
		AITimeout:        cfg.AI.Timeout,
	})

	return &Container{
		Metrics: rec,
		Organizations: orgusecase.NewOrganizationUsecase(
			orgRepo,
			profile.NewFetcher(infrahttp.NewHTTPClient(profileTimeout)),
		),
		Fetch: updusecase.NewFetchUsecase(
			orgRepo,
			updateRepo,
			runRepo,
			fetcher,
			updusecase.NewDeduplicator(cfg.Fetch.SimilarityThreshold),
			updusecase.NewCategorizer(),
			updusecase.NewSentimentScorer(judge),
			updusecase.NewSummarizer(summarizer, cfg.AI.SummaryWords),
			rec,
			updusecase.FetchOptions{
				Concurrency:       cfg.Fetch.Concurrency,
				DefaultDays:       cfg.Fetch.DefaultDays,
				DefaultMaxResults: cfg.Fetch.DefaultMaxResults,
			},
		),
		Query: updusecase.NewQueryUsecase(orgRepo, updateRepo, runRepo, statsRepo),
		Impact: impactusecase.NewImpactUsecase(orgRepo, updateRepo, analyzer, impactusecase.ImpactOptions{
			WindowDays:  cfg.Analysis.WindowDays,
			Concurrency: cfg.Fetch.Concurrency,
		}),
	}, nil
}

// NewAI returns the Gemini client, or nil when no API key is configured.
func NewAI(ctx context.Context, cfg config.AIConfig) (*gemini.Client, error) {
	if cfg.GeminiAPIKey == "" {
		slog.Info("gemini api key not set, using rule-based analysis only", "component", "di")
		return nil, nil
	}
	c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.Model}, infrahttp.NewHTTPClient(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return c, nil
}
