// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	updusecase "competitor_backend/internal/feature/updates/usecase"
	"competitor_backend/internal/platform/config"
	"competitor_backend/internal/platform/externalapi/googlenews"
	"competitor_backend/internal/platform/externalapi/newsapi"
	"competitor_backend/internal/platform/externalapi/perplexity"
	infrahttp "competitor_backend/internal/platform/http"
	"competitor_backend/internal/shared/ratelimiter"
)

// NewConnectors builds the source connectors in cfg.Order. Unknown names are skipped with a warning.
// Each connector gets its own HTTP client and per-minute rate limiter.
func NewConnectors(cfg config.ConnectorsConfig) []updusecase.SourceConnector {
	out := make([]updusecase.SourceConnector, 0, len(cfg.Order))
	for _, name := range cfg.Order {
		switch name {
		case perplexity.Name:
			c := cfg.Perplexity
			out = append(out, perplexity.New(
				perplexity.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Model: c.Model, Timeout: c.Timeout},
				infrahttp.NewHTTPClient(c.Timeout),
				ratelimiter.NewRateLimiter(name, c.RequestsPerMin, time.Minute),
			))
		case newsapi.Name:
			c := cfg.NewsAPI
			out = append(out, newsapi.New(
				newsapi.Config{APIKey: c.APIKey, BaseURL: c.BaseURL, Language: c.Language, Timeout: c.Timeout},
				infrahttp.NewHTTPClient(c.Timeout),
				ratelimiter.NewRateLimiter(name, c.RequestsPerMin, time.Minute),
			))
		case googlenews.Name:
			c := cfg.GoogleNews
			out = append(out, googlenews.New(
				googlenews.Config{BaseURL: c.BaseURL, Language: c.Language, Country: c.Country, Timeout: c.Timeout},
				infrahttp.NewHTTPClient(c.Timeout),
				ratelimiter.NewRateLimiter(name, c.RequestsPerMin, time.Minute),
			))
		default:
			slog.Warn("unknown connector in config, skipping", "component", "di", "connector", name)
		}
	}
	return out
}
